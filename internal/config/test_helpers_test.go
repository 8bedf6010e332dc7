package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testConfigPath 返回 testdata 下的配置样例路径。
func testConfigPath(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("testdata", name)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("缺少配置样例 %s: %v", name, err)
	}
	return path
}

// writeTempConfig 把内联 TOML 写入临时目录，Provider.File 的相对路径以该目录为基准。
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fsprovider.toml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o600); err != nil {
		t.Fatalf("写入临时配置失败: %v", err)
	}
	return path
}
