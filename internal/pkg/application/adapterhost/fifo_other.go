//go:build !unix

package adapterhost

import "errors"

func mkfifo(string) error {
	return errors.ErrUnsupported
}

func release(string, int) {}
