package source

import "sync"

// lineDirectiveInfo records one `line directive: the raw line on which it
// appeared, and the line number/name/level it asserts from that point on.
// Entries for one file are kept sorted by lineInFile (spec.md §4.1 invariant:
// "entries are kept sorted by raw line and must be monotonic").
type lineDirectiveInfo struct {
	name            string
	lineInFile      uint32
	lineOfDirective uint32
	level           uint8
}

// fileData holds the bytes and metadata for one file on disk (or one
// in-memory buffer assigned a path). Multiple buffer entries may share a
// single fileData when the same file is included along different paths
// (spec.md §3, "Buffer entry").
type fileData struct {
	name      string
	bytes     []byte
	directory string

	lineOnce    sync.Once
	lineOffsets []uint32 // sorted byte offsets of start-of-line

	mu             sync.Mutex
	lineDirectives []lineDirectiveInfo
}

func newFileData(name, directory string, data []byte) *fileData {
	return &fileData{name: name, directory: directory, bytes: data}
}

func (fd *fileData) computeLineOffsets() {
	fd.lineOnce.Do(func() {
		offsets := make([]uint32, 0, len(fd.bytes)/32+1)
		offsets = append(offsets, 0)
		for i, b := range fd.bytes {
			if b == '\n' {
				offsets = append(offsets, uint32(i+1))
			}
		}
		fd.lineOffsets = offsets
	})
}

// rawLineNumber returns the 1-based line number of offset, ignoring any line
// directives.
func (fd *fileData) rawLineNumber(offset uint32) uint32 {
	fd.computeLineOffsets()
	offsets := fd.lineOffsets
	lo, hi := 0, len(offsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if offsets[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return uint32(lo) + 1
}

func (fd *fileData) rawColumnNumber(offset uint32) uint32 {
	fd.computeLineOffsets()
	line := fd.rawLineNumber(offset)
	return offset - fd.lineOffsets[line-1] + 1
}

// addLineDirective appends a new directive, keeping lineDirectives sorted by
// lineInFile. Callers are expected to call with monotonically increasing raw
// lines (the preprocessor only ever scans forward), but we sort defensively.
func (fd *fileData) addLineDirective(lineInFile, lineOfDirective uint32, name string, level uint8) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	fd.lineDirectives = append(fd.lineDirectives, lineDirectiveInfo{
		name:            name,
		lineInFile:      lineInFile,
		lineOfDirective: lineOfDirective,
		level:           level,
	})
	dirs := fd.lineDirectives
	for i := len(dirs) - 1; i > 0 && dirs[i-1].lineInFile > dirs[i].lineInFile; i-- {
		dirs[i-1], dirs[i] = dirs[i], dirs[i-1]
	}
}

// previousLineDirective returns the nearest directive at or before rawLine,
// or nil if there is none.
func (fd *fileData) previousLineDirective(rawLine uint32) *lineDirectiveInfo {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	var found *lineDirectiveInfo
	for i := range fd.lineDirectives {
		d := &fd.lineDirectives[i]
		if d.lineInFile > rawLine {
			break
		}
		found = d
	}
	return found
}
