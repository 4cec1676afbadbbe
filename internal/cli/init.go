package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/swagger2types/internal/emitter"
	"github.com/mark3labs/swagger2types/internal/report"
	"github.com/spf13/cobra"
)

const defaultConfigName = "swagger2types.yaml"

// InitConfig captures the options for the init command. Inputs and Lang, when
// set, are written as active keys instead of commented examples.
type InitConfig struct {
	OutputPath string
	Inputs     []string
	Lang       string
	Force      bool
	Verbose    bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented swagger2types configuration file",
		Long: "Write a swagger2types configuration file documenting every key generate and validate read. " +
			"Pass --input and --lang to pre-fill them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			cfg := &InitConfig{}
			var err error
			if cfg.OutputPath, err = flags.GetString("out"); err != nil {
				return err
			}
			if cfg.Inputs, err = flags.GetStringSlice("input"); err != nil {
				return err
			}
			if cfg.Lang, err = flags.GetString("lang"); err != nil {
				return err
			}
			if cfg.Force, err = flags.GetBool("force"); err != nil {
				return err
			}
			if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
				return err
			}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", defaultConfigName, "Where to write the config file")
	cmd.Flags().StringSlice("input", nil, "Pre-fill the input key")
	cmd.Flags().String("lang", "", "Pre-fill the lang key (rust|typescript|python)")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	lang := ""
	if strings.TrimSpace(cfg.Lang) != "" {
		lang = canonicalLang(cfg.Lang)
		if _, err := newTarget(lang); err != nil {
			return newUsageError(fmt.Sprintf("init: %v", err))
		}
	}
	content, err := renderSampleConfig(sanitizeList(cfg.Inputs), lang)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigName
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}
	if st, err := os.Stat(absPath); err == nil {
		if !st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %s is not a regular file", absPath))
		}
		if !cfg.Force {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	tmp, err := os.CreateTemp(filepath.Dir(absPath), ".tmp-swagger2types-*")
	if err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	tmpName := tmp.Name()
	_, werr := tmp.WriteString(content)
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Chmod(tmpName, 0o644)
	}
	if werr == nil {
		werr = os.Rename(tmpName, absPath)
	}
	if werr != nil {
		_ = os.Remove(tmpName)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, werr))
	}

	r := report.Std(cfg.Verbose)
	r.Infof("config keys: input=%v lang=%q", cfg.Inputs, lang)
	r.Printf("Wrote sample config to %s", absPath)
	return nil
}

// canonicalLang resolves the short aliases generate accepts.
func canonicalLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	switch lang {
	case "ts":
		return "typescript"
	case "rs":
		return "rust"
	case "py":
		return "python"
	}
	return lang
}

func renderSampleConfig(inputs []string, lang string) (string, error) {
	out, err := emitter.Execute(sampleConfigTmpl, struct {
		Inputs []string
		Lang   string
	}{inputs, lang})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out) + "\n", nil
}

// sampleConfigTmpl documents every key applyGenerateConfigFromFile accepts.
var sampleConfigTmpl = emitter.Template("swagger2types.yaml", `# swagger2types configuration (YAML)
# All fields are optional. Command-line flags override config values.

# Directories or files holding Swagger 2 / OpenAPI 3 documents (.json, .yaml, .yml).
# Each sub-directory is a domain; its name prefixes the generated file names.
{{ if .Inputs }}input:
{{ range .Inputs }}  - {{ quote . }}
{{ end }}{{ else }}# input: [./apis]
{{ end }}
# Target language (rust|typescript|python). Defaults to rust.
{{ if .Lang }}lang: {{ .Lang }}{{ else }}# lang: rust{{ end }}

# Output directory. When omitted, derived from projectName.
# out: ./models

# Name written to Cargo.toml / package.json / pyproject.toml.
# projectName: api-models

# Documents processed in parallel. 1 (or 0) processes them one at a time.
# workers: 4

# Run the OpenAPI validator and print findings as warnings.
# validate: false

# Fail documents with validator findings.
# strict: false

# Preview planned outputs without writing files.
# dryRun: false

# Write into a non-empty output directory.
# force: false

# Enable verbose logging.
# verbose: false
`, nil)
