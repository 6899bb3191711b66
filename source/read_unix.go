//go:build unix

package source

import (
	"os"

	"golang.org/x/sys/unix"
)

// readFileBytes reads a source file by mmap'ing it read-only and copying
// the mapping into a fresh slice. Empty files return an empty slice without
// mapping; files mmap can't handle (special files) fall back to a plain
// read.
func readFileBytes(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := st.Size()
	if size == 0 {
		return []byte{}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return os.ReadFile(path)
	}
	// Copy out of the mapping so the buffer's lifetime isn't tied to the
	// mapping (the Manager's fileData may outlive this call by a long time,
	// and callers should never need to Munmap).
	out := make([]byte, len(data))
	copy(out, data)
	_ = unix.Munmap(data)
	return out, nil
}
