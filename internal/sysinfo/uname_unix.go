//go:build linux || darwin || freebsd || netbsd || openbsd

package sysinfo

import (
	"context"

	"golang.org/x/sys/unix"
)

func unameRelease(context.Context) (string, error) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "", err
	}
	return unix.ByteSliceToString(u.Release[:]), nil
}
