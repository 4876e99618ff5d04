//go:build unix

package trace

import (
	"os"

	"golang.org/x/sys/unix"
)

// mapFile maps the whole file read-only into memory. The returned release
// function unmaps it.
func mapFile(path string) ([]byte, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}

	size := info.Size()
	if size == 0 {
		return nil, func() {}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size),
		unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}

	release := func() {
		_ = unix.Munmap(data)
	}

	return data, release, nil
}
