package main

import (
	"os"

	"github.com/haskel/gpuprobe/internal/cli"
)

var (
	version = "0.1.0"
)

func main() {
	os.Exit(cli.Run(cli.DefaultDeps(version), os.Args[1:]))
}
