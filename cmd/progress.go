package cmd

import (
	"fmt"
	"io"
	"sync"
)

// progressPrinter renders one "[row/total]target...ok" line per checked target.
type progressPrinter struct {
	out io.Writer
	mu  sync.Mutex
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	if out == nil {
		out = io.Discard
	}
	return &progressPrinter{out: out}
}

// Report matches the orchestrator's progress callback.
func (p *progressPrinter) Report(row, total int, target string, done bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !done {
		fmt.Fprintf(p.out, "[%d/%d]%s...", row, total, target)
		return
	}
	fmt.Fprintln(p.out, formatStatusWithColor("ok"))
}
