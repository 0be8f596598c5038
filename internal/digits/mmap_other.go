//go:build !unix

package digits

import (
	"io"
	"os"
)

// Platforms without mmap read the file into memory instead.
func mapFile(f *os.File, size int) ([]byte, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func unmapFile([]byte) error {
	return nil
}
