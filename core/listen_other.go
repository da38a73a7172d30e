//go:build !unix

package core

import "syscall"

func controlSocket(_, _ string, _ syscall.RawConn) error {
	return nil
}
