package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/contactform/internal/config"
	"github.com/conneroisu/contactform/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect contactform configuration",
	Long: `Inspect the configuration contactform would run with.

Examples:
  contactform config show                  # Effective configuration as YAML
  contactform config show --format json
  contactform config validate              # Check the active configuration
  contactform config validate --file prod.yml --strict`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Print the configuration after the config file, CONTACTFORM_ environment
variables, flags and defaults are merged. The API key and auth token are
masked.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Check the configuration and report every problem at once, with hints.

Warnings, such as plain http in production, do not fail the command unless
--strict is given.`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

var (
	configFile   string
	configFormat string
	configStrict bool
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)

	configShowCmd.Flags().StringVar(&configFormat, "format", "yaml", "Output format (yaml, json)")

	configValidateCmd.Flags().StringVarP(&configFile, "file", "f", "", "Configuration file to validate (default: the active configuration)")
	configValidateCmd.Flags().BoolVar(&configStrict, "strict", false, "Treat warnings as errors")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Decode(viper.GetViper())
	if err != nil {
		return err
	}
	return writeConfig(cmd.OutOrStdout(), cfg.Redacted(), configFormat)
}

func writeConfig(w io.Writer, cfg *config.Config, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	default:
		return errors.ConfigurationError("format", "supported formats are yaml and json", format)
	}
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	if configFile != "" {
		v = viper.New()
		v.SetConfigFile(configFile)
		config.BindEnv(v)
		if err := v.ReadInConfig(); err != nil {
			return errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "failed to read "+configFile)
		}
	}

	cfg, err := config.Decode(v)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	result := config.ValidateConfigWithDetails(cfg)
	if result.HasErrors() || result.HasWarnings() {
		fmt.Fprint(out, result.String())
	}

	switch {
	case result.HasErrors():
		return errors.NewConfigError(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("configuration has %d error(s)", len(result.Errors)))
	case configStrict && result.HasWarnings():
		return errors.NewConfigError(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("configuration has %d warning(s) and --strict is set", len(result.Warnings)))
	}

	fmt.Fprintln(out, "Configuration is valid")
	return nil
}
