//go:build !unix

package source

import "os"

// readFileBytes is the portable fallback used on platforms without the
// unix mmap path (e.g. Windows), matching the teacher's own split between
// an mmap/syscall-backed path and a plain os.ReadFile path per target.
func readFileBytes(path string) ([]byte, error) {
	return os.ReadFile(path)
}
