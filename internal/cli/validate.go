package cli

import (
	"context"
	"strings"

	"github.com/mark3labs/swagger2types/internal/report"
	genspec "github.com/mark3labs/swagger2types/internal/spec"
	"github.com/spf13/cobra"
)

// ValidateConfig captures the options for the validate command.
type ValidateConfig struct {
	Inputs  []string
	Strict  bool
	Verbose bool
}

var validateRunner = runValidate

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check description documents without generating anything",
		Long: "Parse every description document under --input and run the OpenAPI validator. " +
			"Structural problems always fail; validator findings fail only with --strict. " +
			"Reads input, strict and verbose from the same config file as generate.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveValidateConfig(cmd)
			if err != nil {
				return err
			}
			return validateRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringSlice("input", nil, "Directory or file holding description documents (repeatable)")
	cmd.Flags().Bool("strict", false, "Treat validator findings as failures")

	return cmd
}

func resolveValidateConfig(cmd *cobra.Command) (*ValidateConfig, error) {
	shared := defaultGenerateConfig()
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if configPath = strings.TrimSpace(configPath); configPath != "" {
		if err := applyGenerateConfigFromFile(&shared, configPath); err != nil {
			return nil, err
		}
	}
	if err := applyGenerateFlagOverrides(cmd.Flags(), &shared); err != nil {
		return nil, err
	}
	cfg := &ValidateConfig{
		Inputs:  sanitizeList(shared.Inputs),
		Strict:  shared.Strict,
		Verbose: shared.Verbose,
	}
	if len(cfg.Inputs) == 0 {
		return nil, newUsageError("validate: --input is required (set via flag or config file)")
	}
	return cfg, nil
}

func runValidate(ctx context.Context, cfg *ValidateConfig) error {
	sources, err := discoverSources(cfg.Inputs)
	if err != nil {
		return err
	}
	r := report.Std(cfg.Verbose)
	failed := 0
	for _, src := range sources {
		if !validateSource(ctx, r, src, cfg.Strict) {
			failed++
		}
	}
	warnings, _ := r.Counts()
	r.Printf("%d documents checked, %d failed, %d warnings", len(sources), failed, warnings)
	if failed > 0 {
		return documentsFailed(failed, len(sources))
	}
	return nil
}

func validateSource(ctx context.Context, r *report.Reporter, src genspec.Source, strict bool) bool {
	tree, err := src.Load()
	if err != nil {
		r.Errorf("%v", err)
		return false
	}
	if _, err := genspec.Parse(src.Name, tree); err != nil {
		r.Errorf("%v", err)
		return false
	}
	if err := genspec.Validate(ctx, src.Name, tree); err != nil {
		if strict {
			r.Errorf("%v", err)
			return false
		}
		r.Warnf("%v", err)
	}
	r.Printf("[OK] %s", src.Name)
	return true
}
