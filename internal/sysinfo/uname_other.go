//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package sysinfo

import (
	"context"
	"fmt"

	"github.com/haskel/gpuprobe/internal/shell"
)

func unameRelease(context.Context) (string, error) {
	return "", fmt.Errorf("uname: %w", shell.ErrToolUnavailable)
}
