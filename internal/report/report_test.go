package report

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestReporter_Streams(t *testing.T) {
	t.Parallel()
	var out, errOut bytes.Buffer
	r := New(&out, &errOut, false)
	r.Infof("hidden %d", 1)
	r.Skipf("Pet.tags: nested array properties are not generated")
	r.Warnf("validate: %s", "missing info")
	r.Errorf("write %s: %s", "a.rs", "denied")
	r.Printf("done")

	if got := out.String(); got != "[SKIP] Pet.tags: nested array properties are not generated\ndone\n" {
		t.Fatalf("unexpected stdout: %q", got)
	}
	if got := errOut.String(); got != "[WARN] validate: missing info\n[ERROR] write a.rs: denied\n" {
		t.Fatalf("unexpected stderr: %q", got)
	}
	if w, e := r.Counts(); w != 1 || e != 1 {
		t.Fatalf("counts = %d/%d", w, e)
	}
}

func TestReporter_VerboseInfo(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	r := New(&out, nil, true)
	r.Infof("parsed %s", "pets.yaml")
	if out.String() != "[INFO] parsed pets.yaml\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
	if w, e := r.Counts(); w != 0 || e != 0 {
		t.Fatalf("info lines should not count: %d/%d", w, e)
	}
}

func TestReporter_ConcurrentLinesStayWhole(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	r := New(&out, &out, true)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				r.Infof("worker %d line %d", i, j)
			}
		}(i)
	}
	wg.Wait()
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 16*20 {
		t.Fatalf("expected %d lines, got %d", 16*20, len(lines))
	}
	for _, line := range lines {
		var w, l int
		if _, err := fmt.Sscanf(line, "[INFO] worker %d line %d", &w, &l); err != nil {
			t.Fatalf("mangled line %q: %v", line, err)
		}
	}
}
