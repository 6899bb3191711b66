package diagnostics

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Bag collects diagnostics for one compilation. It is the arena spec.md §5/§7
// describes: diagnostics live as long as the compilation and are never mutated
// after Add, only appended.
type Bag struct {
	mu    sync.Mutex
	diags []Diagnostic
	errs  int
	warns int
}

func NewBag() *Bag {
	return &Bag{}
}

func (b *Bag) Add(d Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.diags = append(b.diags, d)
	switch d.Severity {
	case Error:
		b.errs++
	case Warning:
		b.warns++
	}
}

func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errs > 0
}

func (b *Bag) ErrorCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errs
}

func (b *Bag) WarningCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.warns
}

// Diagnostics returns a snapshot of everything collected so far, in emission
// order.
func (b *Bag) Diagnostics() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Diagnostic, len(b.diags))
	copy(out, b.diags)
	return out
}

// jsonDiagnostic is Diagnostic's wire shape; source.Location has no exported
// fields, so it's rendered as a buffer/offset pair rather than embedded
// directly.
type jsonDiagnostic struct {
	Code     Code   `json:"code"`
	Severity string `json:"severity"`
	Buffer   uint32 `json:"buffer"`
	Offset   uint32 `json:"offset"`
	Args     []any  `json:"args,omitempty"`
}

// RenderJSON writes every collected diagnostic as one JSON object per line,
// mirroring the teacher's jsonLoggingEnabled sink (logging.go).
func (b *Bag) RenderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, d := range b.Diagnostics() {
		jd := jsonDiagnostic{
			Code: d.Code, Severity: d.Severity.String(),
			Buffer: uint32(d.Location.Buffer()), Offset: d.Location.Offset(),
			Args: d.Args,
		}
		if err := enc.Encode(jd); err != nil {
			return err
		}
	}
	return nil
}

// RenderPlain writes "severity: code buffer:offset args..." lines, the
// teacher's non-JSON logging.go fallback format.
func (b *Bag) RenderPlain(w io.Writer) error {
	for _, d := range b.Diagnostics() {
		_, err := fmt.Fprintf(w, "%s: %s %d:%d %v\n", d.Severity, d.Code, d.Location.Buffer(), d.Location.Offset(), d.Args)
		if err != nil {
			return err
		}
	}
	return nil
}
