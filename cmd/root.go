// Package cmd provides the contactform command-line interface.
//
// Configuration comes from several sources, highest priority first:
//
//  1. Command-line flags (--port, --endpoint, ...)
//  2. CONTACTFORM_<SECTION>_<KEY> environment variables, e.g.
//     CONTACTFORM_API_ENDPOINT or CONTACTFORM_FORM_BLOCK_INVALID
//  3. The config file: --config, else CONTACTFORM_CONFIG_FILE, else
//     .contactform.yml in the working directory
//  4. Built-in defaults
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/contactform/internal/config"
	"github.com/conneroisu/contactform/internal/contact"
	"github.com/conneroisu/contactform/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "contactform",
	Short: "Create contacts through a GraphQL createContact mutation",
	Long: `contactform serves the New Contact form and sends each submitted draft
to a GraphQL API as a createContact mutation.

Front-ends:
  contactform serve     Web form with live validation over WebSocket
  contactform tui       Terminal form
  contactform submit    One-shot submit from flags

Every front-end validates the draft, attributes the contact to the fixed
owner, and logs "error creating contacts" when the API rejects it.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .contactform.yml, can also use CONTACTFORM_CONFIG_FILE)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().String("endpoint", "", "GraphQL endpoint URL")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("api.endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
}

// initConfig picks the config file and enables CONTACTFORM_ env overrides.
// A missing file is not an error; defaults apply.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(config.EnvPrefix + "_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".contactform")
	}

	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads and validates the configuration, then builds the logger
// it describes.
func loadConfig() (*config.Config, *logging.ContactLogger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, cfg.Log.NewLogger(), nil
}

func formPolicy(cfg *config.Config) contact.Policy {
	return contact.Policy{
		BlockInvalid: cfg.Form.BlockInvalid,
		SingleFlight: cfg.Form.SingleFlight,
	}
}
