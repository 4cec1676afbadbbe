// Package report prints operator-visible progress lines. Info and skip lines
// go to the output stream; warnings and errors go to the error stream.
package report

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Reporter serializes writes so parallel workers never interleave lines. The
// zero value is not usable; use New or Discard.
type Reporter struct {
	mu      sync.Mutex
	out     io.Writer
	err     io.Writer
	verbose bool

	warnings int
	errors   int
}

// New returns a reporter writing to out and errOut. Info lines are printed only
// when verbose is set.
func New(out, errOut io.Writer, verbose bool) *Reporter {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	return &Reporter{out: out, err: errOut, verbose: verbose}
}

// Std reports to the process's standard streams.
func Std(verbose bool) *Reporter { return New(os.Stdout, os.Stderr, verbose) }

// Discard drops every line. Counters still work.
func Discard() *Reporter { return New(io.Discard, io.Discard, false) }

func (r *Reporter) Infof(format string, args ...any) {
	if !r.verbose {
		return
	}
	r.print(r.out, "[INFO] ", format, args...)
}

// Skipf records an entry that was recognized but produced no output.
func (r *Reporter) Skipf(format string, args ...any) {
	r.print(r.out, "[SKIP] ", format, args...)
}

func (r *Reporter) Warnf(format string, args ...any) {
	r.mu.Lock()
	r.warnings++
	r.mu.Unlock()
	r.print(r.err, "[WARN] ", format, args...)
}

func (r *Reporter) Errorf(format string, args ...any) {
	r.mu.Lock()
	r.errors++
	r.mu.Unlock()
	r.print(r.err, "[ERROR] ", format, args...)
}

// Printf writes an unprefixed line to the output stream.
func (r *Reporter) Printf(format string, args ...any) {
	r.print(r.out, "", format, args...)
}

// Counts returns the number of warnings and errors reported so far.
func (r *Reporter) Counts() (warnings, errors int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.warnings, r.errors
}

func (r *Reporter) print(w io.Writer, prefix, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(w, prefix+format+"\n", args...)
}
