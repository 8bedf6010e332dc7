package main

import (
	"fmt"

	"github.com/any-hub/fsprovider/internal/version"
)

// printVersion 对应 --version，不加载配置。
func printVersion() {
	fmt.Fprintln(stdOut, version.Full())
}
