package version

import (
	"fmt"
	"runtime"
)

// Version/Commit/BuildDate 通过 -ldflags "-X" 在构建时注入。
var (
	Version   = "0.1.0"
	Commit    = "dev"
	BuildDate = ""
)

// Info 是 /-/version 与 --version 共用的构建信息。
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
}

// Get 返回当前二进制的构建信息。
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

// Full 返回便于 CLI 打印的单行版本信息。
func Full() string {
	info := Get()
	if info.BuildDate == "" {
		return fmt.Sprintf("fsprovider %s (%s, %s)", info.Version, info.Commit, info.GoVersion)
	}
	return fmt.Sprintf("fsprovider %s (%s, built %s, %s)", info.Version, info.Commit, info.BuildDate, info.GoVersion)
}
