package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/swagger2types/internal/emitter"
	"github.com/mark3labs/swagger2types/internal/emitter/pyemitter"
	"github.com/mark3labs/swagger2types/internal/emitter/rustemitter"
	"github.com/mark3labs/swagger2types/internal/emitter/tsemitter"
	"github.com/mark3labs/swagger2types/internal/ident"
	"github.com/mark3labs/swagger2types/internal/project"
	"github.com/mark3labs/swagger2types/internal/report"
	genspec "github.com/mark3labs/swagger2types/internal/spec"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var supportedLangs = []string{"rust", "typescript", "python"}

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Inputs      []string
	Lang        string
	Out         string
	ProjectName string
	ConfigPath  string
	Workers     int
	Validate    bool
	Strict      bool
	DryRun      bool
	Force       bool
	Verbose     bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Lang: "rust", Workers: 1}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a typed model project from Swagger/OpenAPI documents",
		Long: "Generate a typed model project from Swagger/OpenAPI documents. Every document " +
			"under --input becomes one source file; a manifest aggregates them. " +
			"Object definitions become structs of their primitive properties; nested objects and arrays are not lowered. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  swagger2types generate --input ./apis --lang rust --out ./models
  swagger2types generate --input ./apis/shop --input ./apis/billing --lang typescript --workers 4
  swagger2types --config swagger2types.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringSlice("input", nil, "Directory or file holding description documents (repeatable)")
	flags.String("lang", "", "Target language (rust|typescript|python); defaults to rust")
	flags.String("out", "", "Output directory (derived from --project-name when omitted)")
	flags.String("project-name", "", "Name written to the project descriptor (Cargo.toml, package.json, pyproject.toml)")
	flags.Int("workers", 0, "Documents processed in parallel; 1 processes them sequentially")
	flags.Bool("validate", false, "Run the OpenAPI validator and print its findings as warnings")
	flags.Bool("strict", false, "Fail documents with validator findings (implies --validate)")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Write into a non-empty output directory")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("input") {
		value, err := flags.GetStringSlice("input")
		if err != nil {
			return err
		}
		cfg.Inputs = value
	}
	for name, dst := range map[string]*string{
		"lang":         &cfg.Lang,
		"out":          &cfg.Out,
		"project-name": &cfg.ProjectName,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}
	if flags.Changed("workers") {
		value, err := flags.GetInt("workers")
		if err != nil {
			return err
		}
		cfg.Workers = value
	}
	for name, dst := range map[string]*bool{
		"validate": &cfg.Validate,
		"strict":   &cfg.Strict,
		"dry-run":  &cfg.DryRun,
		"force":    &cfg.Force,
		"verbose":  &cfg.Verbose,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}
	return nil
}

func (c *GenerateConfig) normalize() {
	c.Inputs = sanitizeList(c.Inputs)
	c.Lang = canonicalLang(c.Lang)
	c.Out = strings.TrimSpace(c.Out)
	c.ProjectName = strings.TrimSpace(c.ProjectName)
	if c.Strict {
		c.Validate = true
	}
}

func (c *GenerateConfig) validate() error {
	if len(c.Inputs) == 0 {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}
	if c.Lang == "" {
		c.Lang = "rust"
	}
	if _, err := newTarget(c.Lang); err != nil {
		return newUsageError("generate: " + err.Error())
	}
	if c.Workers < 0 {
		return newUsageError(fmt.Sprintf("generate: --workers must be >= 0, got %d", c.Workers))
	}
	return nil
}

func newTarget(lang string) (emitter.Target, error) {
	switch lang {
	case "rust":
		return rustemitter.New(), nil
	case "typescript":
		return tsemitter.New(), nil
	case "python":
		return pyemitter.New(), nil
	default:
		return nil, fmt.Errorf("unsupported --lang %q (allowed: %s)", lang, strings.Join(supportedLangs, ", "))
	}
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	target, err := newTarget(cfg.Lang)
	if err != nil {
		return newUsageError("generate: " + err.Error())
	}
	sources, err := discoverSources(cfg.Inputs)
	if err != nil {
		return err
	}

	outDir := cfg.Out
	if outDir == "" {
		outDir = deriveOutDir(cfg.ProjectName)
	}
	absOut := outDir
	if ap, err := filepath.Abs(outDir); err == nil {
		absOut = ap
	}

	r := report.Std(cfg.Verbose)
	r.Infof("generating %s project from %d documents into %s", target.Name(), len(sources), absOut)
	res, err := project.Generate(ctx, target, sources, project.Options{
		OutDir:      outDir,
		ProjectName: cfg.ProjectName,
		Force:       cfg.Force,
		DryRun:      cfg.DryRun,
		Validate:    cfg.Validate,
		Strict:      cfg.Strict,
		Workers:     cfg.Workers,
		Reporter:    r,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}

	if cfg.DryRun {
		paths := make([]string, 0, len(res.Planned))
		for _, p := range res.Planned {
			paths = append(paths, p.RelPath)
		}
		printPlan(absOut, len(res.Planned), paths)
	}
	warnings, _ := r.Counts()
	r.Printf("%d modules, %d skipped, %d failed, %d warnings (%s)", len(res.Modules), len(res.Skipped), len(res.Failures), warnings, absOut)

	if len(res.Failures) > 0 {
		return documentsFailed(len(res.Failures), len(sources))
	}
	return nil
}

// discoverSources expands every input into its description documents, keeping
// input order.
func discoverSources(inputs []string) ([]genspec.Source, error) {
	var sources []genspec.Source
	for _, input := range inputs {
		found, err := genspec.Discover(input)
		if err != nil {
			var se *genspec.SpecError
			if errors.As(err, &se) {
				msg := fmt.Sprintf("input: %s", se.Message)
				if se.Location != "" {
					msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
				}
				return nil, newUsageError(msg)
			}
			return nil, err
		}
		sources = append(sources, found...)
	}
	if len(sources) == 0 {
		return nil, newUsageError(fmt.Sprintf("input: no .json, .yaml or .yml documents found in %s", strings.Join(inputs, ", ")))
	}
	return sources, nil
}

func deriveOutDir(projectName string) string {
	if name := strings.Join(ident.Words(projectName), "-"); name != "" {
		return name
	}
	return "generated-types"
}

func printPlan(outDir string, count int, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, count)
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}

func wrapOutputError(err error, outDir string) error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output directory") || strings.Contains(lower, "not a directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}

func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
