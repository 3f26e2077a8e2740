//go:build unix

package adapterhost

import (
	"io"
	"os"
	"syscall"
)

func mkfifo(path string) error {
	return syscall.Mkfifo(path, 0o600)
}

// release opens the opposite end of a pipe without blocking, so that a
// goroutine stuck opening its own end is let through. A reading end is
// drained until every writer has closed.
func release(path string, flag int) {
	f, err := os.OpenFile(path, flag|syscall.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	defer f.Close()

	if flag == os.O_RDONLY {
		io.Copy(io.Discard, f)
	}
}
