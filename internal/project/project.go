// Package project assembles a generated project: it scaffolds the project
// root, turns every description document into one source file and finishes
// with the manifest that aggregates them.
//
// Each document moves through load, validate, parse, collect and write. A
// failure in any stage is recorded for that document and the run moves on; the
// manifest lists only documents that produced a file.
package project

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mark3labs/swagger2types/internal/emitter"
	"github.com/mark3labs/swagger2types/internal/ident"
	"github.com/mark3labs/swagger2types/internal/report"
	genspec "github.com/mark3labs/swagger2types/internal/spec"
	"golang.org/x/sync/errgroup"
)

// Options controls a generation run.
type Options struct {
	OutDir      string // required
	ProjectName string // defaults to the base name of OutDir
	Version     string
	Force       bool // allow a non-empty OutDir
	DryRun      bool // plan only, write nothing
	Validate    bool // run the kin-openapi pass and report findings as warnings
	Strict      bool // validation findings fail the document; implies Validate
	Workers     int  // documents processed in parallel; <= 1 is sequential
	Reporter    *report.Reporter
}

// Stage names the step a document failed in.
type Stage string

const (
	StageLoad     Stage = "load"
	StageValidate Stage = "validate"
	StageParse    Stage = "parse"
	StageCollect  Stage = "collect"
	StageWrite    Stage = "write"
	StageManifest Stage = "manifest"
)

// Failure is a per-document (or manifest) error that did not stop the run.
type Failure struct {
	Source string
	Stage  Stage
	Err    error
}

func (f Failure) Error() string {
	var se *genspec.SpecError
	if errors.As(f.Err, &se) && se.Location != "" {
		return fmt.Sprintf("%s: %v", f.Stage, f.Err)
	}
	return fmt.Sprintf("%s %s: %v", f.Stage, f.Source, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Result summarizes a run.
type Result struct {
	OutDir   string
	Planned  []PlannedFile
	Modules  []emitter.Module
	Skipped  []string // documents that yielded no declarations
	Failures []Failure
}

// outcome is what processing a single document yields.
type outcome struct {
	module  *emitter.Module
	file    *PlannedFile
	skipped bool
	failure *Failure
}

// Generate runs the assembler for sources in the given order. The returned
// error covers only setup problems (bad output directory, scaffold writes);
// document failures are collected in Result.Failures.
func Generate(ctx context.Context, t emitter.Target, sources []genspec.Source, opts Options) (*Result, error) {
	if t == nil {
		return nil, fmt.Errorf("project: nil target")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("project: OutDir is required")
	}
	if opts.Reporter == nil {
		opts.Reporter = report.Discard()
	}
	if opts.Strict {
		opts.Validate = true
	}
	abs, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return nil, fmt.Errorf("project: resolve output directory: %w", err)
	}
	if err := validateOutputDirectory(abs, opts.Force); err != nil {
		return nil, err
	}

	res := &Result{OutDir: abs}
	name := strings.TrimSpace(opts.ProjectName)
	if name == "" {
		name = filepath.Base(abs)
	}
	scaffold, err := t.Scaffold(emitter.Project{Name: name, Version: opts.Version})
	if err != nil {
		return nil, fmt.Errorf("project: scaffold: %w", err)
	}
	for _, rel := range sortedKeys(scaffold) {
		res.Planned = append(res.Planned, plannedFile(rel, scaffold[rel]))
		if opts.DryRun {
			continue
		}
		if err := writeFileAtomic(abs, rel, scaffold[rel]); err != nil {
			return nil, fmt.Errorf("project: write %s: %w", rel, err)
		}
	}

	outcomes := make([]outcome, len(sources))
	taken := takenOutputs(t, sources)
	run := func(i int) {
		outcomes[i] = process(ctx, t, abs, sources[i], taken[i], opts)
	}
	if opts.Workers <= 1 || len(sources) < 2 {
		for i := range sources {
			run(i)
		}
	} else {
		runPool(opts.Workers, len(sources), run)
	}

	for i, o := range outcomes {
		switch {
		case o.failure != nil:
			res.Failures = append(res.Failures, *o.failure)
		case o.skipped:
			res.Skipped = append(res.Skipped, sources[i].Name)
		case o.module != nil:
			res.Modules = append(res.Modules, *o.module)
			res.Planned = append(res.Planned, *o.file)
		}
	}

	sortModules(res.Modules)
	manifest, err := t.RenderManifest(res.Modules)
	if err == nil {
		res.Planned = append(res.Planned, plannedFile(t.ManifestPath(), manifest))
		if !opts.DryRun {
			err = writeFileAtomic(abs, t.ManifestPath(), manifest)
		}
	}
	if err != nil {
		f := Failure{Source: t.ManifestPath(), Stage: StageManifest, Err: err}
		opts.Reporter.Errorf("%s", f.Error())
		res.Failures = append(res.Failures, f)
	} else if !opts.DryRun {
		opts.Reporter.Infof("wrote %s (%d modules)", t.ManifestPath(), len(res.Modules))
	}

	sortPlanned(res.Planned)
	return res, nil
}

// process carries one document from load to write. takenBy names an earlier
// source that owns the same output file.
func process(ctx context.Context, t emitter.Target, outDir string, src genspec.Source, takenBy string, opts Options) outcome {
	r := opts.Reporter
	fail := func(stage Stage, err error) outcome {
		f := &Failure{Source: src.Name, Stage: stage, Err: err}
		r.Errorf("%s", f.Error())
		return outcome{failure: f}
	}

	tree, err := src.Load()
	if err != nil {
		return fail(StageLoad, err)
	}
	if opts.Validate {
		if err := genspec.Validate(ctx, src.Name, tree); err != nil {
			if opts.Strict {
				return fail(StageValidate, err)
			}
			r.Warnf("%v", err)
		}
	}
	doc, err := genspec.Parse(src.Name, tree)
	if err != nil {
		return fail(StageParse, err)
	}
	r.Infof("parsed %s: %d definitions, %d parameters", src.Name, len(doc.Definitions), len(doc.Parameters))

	set, err := emitter.Collect(t, doc)
	if err != nil {
		return fail(StageCollect, err)
	}
	for _, s := range set.Skips {
		if s.Silent {
			continue
		}
		r.Skipf("%s: %s %s: %s", src.Name, s.Origin, s.Name, s.Reason)
	}
	for _, replaced := range set.Replaced {
		r.Warnf("%s: duplicate declaration %s", src.Name, replaced)
	}
	if set.Len() == 0 {
		r.Skipf("%s: no declarations, no file written", src.Name)
		return outcome{skipped: true}
	}

	rel := outputPath(t, src)
	if takenBy != "" {
		return fail(StageWrite, fmt.Errorf("output file %s is already produced by %s", rel, takenBy))
	}

	file := emitter.File{Source: src.Name, Declarations: set.Sorted()}
	if doc.Info != nil {
		file.Title = doc.Info.Title
	}
	content, err := t.RenderFile(file)
	if err != nil {
		return fail(StageWrite, fmt.Errorf("render: %w", err))
	}
	if !opts.DryRun {
		if err := writeFileAtomic(outDir, rel, content); err != nil {
			return fail(StageWrite, err)
		}
		r.Infof("wrote %s (%d declarations)", rel, set.Len())
	}
	planned := plannedFile(rel, content)
	return outcome{
		module: &emitter.Module{Key: src.File, Name: moduleStem(src)},
		file:   &planned,
	}
}

// moduleStem is "<domain>_<file>", each part sanitized on its own.
func moduleStem(src genspec.Source) string {
	return ident.FileName(src.Domain) + "_" + ident.FileName(src.File)
}

// takenOutputs reports, per source, the earlier source (in input order) that
// already targets the same output file. Later sources fail instead of
// silently overwriting it.
func takenOutputs(t emitter.Target, sources []genspec.Source) []string {
	owners := make(map[string]string, len(sources))
	taken := make([]string, len(sources))
	for i, src := range sources {
		rel := outputPath(t, src)
		if owner, ok := owners[rel]; ok {
			taken[i] = owner
			continue
		}
		owners[rel] = src.Name
	}
	return taken
}

func outputPath(t emitter.Target, src genspec.Source) string {
	return path.Join(t.SourceDir(), moduleStem(src)+"."+t.FileExt())
}

// runPool calls fn for every index in [0, n) with at most workers calls in
// flight. Each call owns its index, so results need no locking.
func runPool(workers, n int, fn func(i int)) {
	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}

// sortModules orders manifest lines by file name key, then module name, so
// documents sharing a file name in different domains stay deterministic.
func sortModules(mods []emitter.Module) {
	sort.Slice(mods, func(i, j int) bool {
		if mods[i].Key != mods[j].Key {
			return mods[i].Key < mods[j].Key
		}
		return mods[i].Name < mods[j].Name
	})
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
