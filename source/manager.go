package source

import (
	"fmt"
	"path/filepath"
	"sync"
)

// Buffer is what AssignText/ReadSource/ReadHeader hand back: the bytes of
// the buffer plus the BufferID that now identifies it.
type Buffer struct {
	Data []byte
	ID   BufferID
}

func (b Buffer) Valid() bool { return b.ID.Valid() }

// ExpansionKind distinguishes the two interpretations of an expansion buffer
// entry, per spec.md §3.
type ExpansionKind int

const (
	MacroBody ExpansionKind = iota
	MacroArg
)

type fileInfo struct {
	data         *fileData
	includedFrom Location
}

type expansionInfo struct {
	originalLoc    Location
	expansionStart Location
	expansionEnd   Location
	kind           ExpansionKind
	macroName      string
}

// bufferEntry is the tagged variant keyed by BufferID (spec.md §3, "Buffer
// entry"). Exactly one of fi/ei is non-nil.
type bufferEntry struct {
	fi *fileInfo
	ei *expansionInfo
}

// Manager is the single authority for source identity, per spec.md §4.1. It
// owns every file buffer and expansion buffer created during one
// compilation, and is the only component allowed to mint new Locations.
type Manager struct {
	mu sync.RWMutex

	// buffers[0] is an unused sentinel so BufferID 0 stays invalid.
	buffers []bufferEntry

	// lookupCache maps a canonical absolute path to the fileData loaded for
	// it, so a file's bytes are read at most once regardless of how many
	// times it's included (spec.md §4.1).
	lookupCache map[string]*fileData

	userDirs []string
	systemDirs []string

	unnamedCount int

	watcher *IncludeWatcher
}

func NewManager() *Manager {
	return &Manager{
		buffers:     make([]bufferEntry, 1), // index 0 reserved
		lookupCache: make(map[string]*fileData),
	}
}

func (m *Manager) AddUserDirectory(path string)   { m.userDirs = append(m.userDirs, path) }
func (m *Manager) AddSystemDirectory(path string) { m.systemDirs = append(m.systemDirs, path) }

func (m *Manager) pushBuffer(e bufferEntry) BufferID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := BufferID(len(m.buffers))
	m.buffers = append(m.buffers, e)
	return id
}

func (m *Manager) entry(id BufferID) bufferEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !id.Valid() || int(id) >= len(m.buffers) {
		return bufferEntry{}
	}
	return m.buffers[id]
}

// AssignText registers an in-memory buffer with no backing path. path is
// advisory, used only for diagnostics (spec.md §4.1).
func (m *Manager) AssignText(text string, includedFrom Location) Buffer {
	m.unnamedCount++
	name := fmt.Sprintf("source_%d", m.unnamedCount)
	return m.AssignTextPath(name, text, includedFrom)
}

func (m *Manager) AssignTextPath(path, text string, includedFrom Location) Buffer {
	fd := newFileData(path, filepath.Dir(path), []byte(text))
	id := m.pushBuffer(bufferEntry{fi: &fileInfo{data: fd, includedFrom: includedFrom}})
	return Buffer{Data: fd.bytes, ID: id}
}

// ReadSource reads path as given (relative to the working directory or
// absolute); it does not search include directories. That search is
// ReadHeader's job.
func (m *Manager) ReadSource(path string) (Buffer, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Buffer{}, err
	}
	return m.openCached(abs, NoLocation)
}

// ReadHeader resolves path against the configured include directories:
// user directories first for quoted includes, system-only for angle-bracket
// includes (spec.md §4.1).
func (m *Manager) ReadHeader(path string, includedFrom Location, isSystem bool) (Buffer, error) {
	var searchDirs []string
	if !isSystem {
		searchDirs = append(searchDirs, m.userDirs...)
	}
	searchDirs = append(searchDirs, m.systemDirs...)

	if filepath.IsAbs(path) {
		abs := filepath.Clean(path)
		if buf, err := m.openCached(abs, includedFrom); err == nil {
			return buf, nil
		}
	}

	var lastErr error
	for _, dir := range searchDirs {
		candidate := filepath.Join(dir, path)
		abs, err := filepath.Abs(candidate)
		if err != nil {
			lastErr = err
			continue
		}
		if buf, err := m.openCached(abs, includedFrom); err == nil {
			return buf, nil
		} else {
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("include %q not found", path)
	}
	return Buffer{}, lastErr
}

// openCached loads abs from disk unless a cached fileData already exists for
// it (IncludeWatcher's invalidate removes entries), then records a new buffer
// entry pointing at the shared fileData (spec.md §4.1: "a file's bytes are
// loaded at most once").
func (m *Manager) openCached(abs string, includedFrom Location) (Buffer, error) {
	m.mu.Lock()
	fd, ok := m.lookupCache[abs]
	m.mu.Unlock()
	if !ok {
		data, err := readFileBytes(abs)
		if err != nil {
			return Buffer{}, err
		}
		fd = newFileData(abs, filepath.Dir(abs), data)
		m.mu.Lock()
		m.lookupCache[abs] = fd
		m.mu.Unlock()
	}
	id := m.pushBuffer(bufferEntry{fi: &fileInfo{data: fd, includedFrom: includedFrom}})
	return Buffer{Data: fd.bytes, ID: id}, nil
}

// invalidate drops a cached fileData so the next open re-reads from disk.
// Called by IncludeWatcher when fsnotify observes a change.
func (m *Manager) invalidate(abs string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lookupCache, abs)
}

// CreateExpansionLoc allocates a fresh expansion buffer and returns a
// location with offset 0 into it (spec.md §4.1).
func (m *Manager) CreateExpansionLoc(original, start, end Location, macroName string, kind ExpansionKind) Location {
	id := m.pushBuffer(bufferEntry{ei: &expansionInfo{
		originalLoc:    original,
		expansionStart: start,
		expansionEnd:   end,
		kind:           kind,
		macroName:      macroName,
	}})
	return NewLocation(id, 0)
}

func (m *Manager) IsFileLoc(loc Location) bool {
	e := m.entry(loc.Buffer())
	return e.fi != nil
}

func (m *Manager) IsMacroLoc(loc Location) bool {
	e := m.entry(loc.Buffer())
	return e.ei != nil
}

func (m *Manager) IsMacroArgLoc(loc Location) bool {
	e := m.entry(loc.Buffer())
	return e.ei != nil && e.ei.kind == MacroArg
}

func (m *Manager) IsIncludedFileLoc(loc Location) bool {
	e := m.entry(loc.Buffer())
	return e.fi != nil && e.fi.includedFrom.Valid()
}

func (m *Manager) IsPreprocessedLoc(loc Location) bool {
	return m.IsMacroLoc(loc) || m.IsIncludedFileLoc(loc)
}

// GetExpansionLoc returns the use-site start of a macro location, one step
// (not fully expanded).
func (m *Manager) GetExpansionLoc(loc Location) Location {
	e := m.entry(loc.Buffer())
	if e.ei == nil {
		return loc
	}
	return e.ei.expansionStart
}

func (m *Manager) GetExpansionRange(loc Location) Range {
	e := m.entry(loc.Buffer())
	if e.ei == nil {
		return Range{Start: loc, End: loc}
	}
	return Range{Start: e.ei.expansionStart, End: e.ei.expansionEnd}
}

// GetOriginalLoc returns the one-step original location of a macro location
// (body token location, or argument-site location for MacroArg entries).
func (m *Manager) GetOriginalLoc(loc Location) Location {
	e := m.entry(loc.Buffer())
	if e.ei == nil {
		return loc
	}
	return e.ei.originalLoc
}

// GetFullyExpandedLoc walks the expansion chain to its fixed point, landing
// on a file location.
func (m *Manager) GetFullyExpandedLoc(loc Location) Location {
	for {
		e := m.entry(loc.Buffer())
		if e.ei == nil {
			return loc
		}
		loc = e.ei.expansionStart
	}
}

// GetFullyOriginalLoc walks the original-location chain to its fixed point.
func (m *Manager) GetFullyOriginalLoc(loc Location) Location {
	for {
		e := m.entry(loc.Buffer())
		if e.ei == nil {
			return loc
		}
		loc = e.ei.originalLoc
	}
}

func (m *Manager) GetMacroName(loc Location) string {
	seen := loc
	for {
		e := m.entry(seen.Buffer())
		if e.ei == nil {
			return ""
		}
		if e.ei.macroName != "" {
			return e.ei.macroName
		}
		seen = e.ei.expansionStart
	}
}

func (m *Manager) fileDataFor(loc Location) *fileData {
	e := m.entry(loc.Buffer())
	if e.fi == nil {
		return nil
	}
	return e.fi.data
}

// GetLineNumber returns the (possibly `line-directive-overlaid) line number
// for a file location. loc must be a file location; callers holding a macro
// location should call GetFullyExpandedLoc first.
func (m *Manager) GetLineNumber(loc Location) uint32 {
	fd := m.fileDataFor(loc)
	if fd == nil {
		return 0
	}
	raw := fd.rawLineNumber(loc.Offset())
	if d := fd.previousLineDirective(raw); d != nil {
		return d.lineOfDirective + (raw - d.lineInFile) - 1
	}
	return raw
}

func (m *Manager) GetColumnNumber(loc Location) uint32 {
	fd := m.fileDataFor(loc)
	if fd == nil {
		return 0
	}
	return fd.rawColumnNumber(loc.Offset())
}

// GetFileName returns the display file name for a file location, honoring
// any overlaying `line directive except at level 2 ("pop"), where the
// directive is informational only and the true file name beneath it still
// applies (spec.md §9 leaves exact level semantics to the implementer).
func (m *Manager) GetFileName(loc Location) string {
	fd := m.fileDataFor(loc)
	if fd == nil {
		return ""
	}
	raw := fd.rawLineNumber(loc.Offset())
	if d := fd.previousLineDirective(raw); d != nil && d.level != 2 {
		return d.name
	}
	return fd.name
}

func (m *Manager) GetRawFileName(buf BufferID) string {
	e := m.entry(buf)
	if e.fi == nil {
		return ""
	}
	return e.fi.data.name
}

func (m *Manager) GetDirectory(buf BufferID) string {
	e := m.entry(buf)
	if e.fi == nil {
		return ""
	}
	return e.fi.data.directory
}

func (m *Manager) GetIncludedFrom(buf BufferID) Location {
	e := m.entry(buf)
	if e.fi == nil {
		return NoLocation
	}
	return e.fi.includedFrom
}

func (m *Manager) GetSourceText(buf BufferID) []byte {
	e := m.entry(buf)
	if e.fi == nil {
		return nil
	}
	return e.fi.data.bytes
}

// AddLineDirective records a `line directive at loc (spec.md §4.1).
func (m *Manager) AddLineDirective(loc Location, lineNum uint32, name string, level uint8) {
	fd := m.fileDataFor(loc)
	if fd == nil {
		return
	}
	raw := fd.rawLineNumber(loc.Offset())
	fd.addLineDirective(raw, lineNum, name, level)
}

// fileChain returns loc's fully-expanded file location together with the
// chain of locations (root-first) it was transitively included from, for use
// by IsBeforeInCompilationUnit.
func (m *Manager) fileChain(loc Location) []Location {
	cur := m.GetFullyExpandedLoc(loc)
	chain := []Location{cur}
	for {
		from := m.GetIncludedFrom(cur.Buffer())
		if !from.Valid() {
			break
		}
		from = m.GetFullyExpandedLoc(from)
		chain = append(chain, from)
		cur = from
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// IsBeforeInCompilationUnit imposes the total order spec.md §4.1 calls for:
// fully expanded file position, with include order as secondary key.
func (m *Manager) IsBeforeInCompilationUnit(a, b Location) bool {
	ca, cb := m.fileChain(a), m.fileChain(b)
	n := len(ca)
	if len(cb) < n {
		n = len(cb)
	}
	for i := 0; i < n; i++ {
		if ca[i].Buffer() != cb[i].Buffer() {
			return ca[i].Buffer() < cb[i].Buffer()
		}
		if ca[i].Offset() != cb[i].Offset() {
			return ca[i].Offset() < cb[i].Offset()
		}
	}
	return len(ca) < len(cb)
}
