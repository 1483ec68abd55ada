package cmd

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/conneroisu/contactform/internal/contact"
	"github.com/conneroisu/contactform/internal/graphql"
	"github.com/conneroisu/contactform/internal/logging"
	"github.com/conneroisu/contactform/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:     "tui",
	Aliases: []string{"t"},
	Short:   "Fill in the New Contact form in the terminal",
	Long: `Open the New Contact form in the terminal.

Keys:
  tab / shift+tab   move between fields
  ctrl+s            save
  esc               cancel and return to /contacts
  ctrl+c            quit

Logs go to --log-file so they do not draw over the form.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().String("log-file", "contactform-tui.log", "file that receives log output while the form is open")
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	logPath, _ := cmd.Flags().GetString("log-file")
	logOut, closeLog, err := openLogFile(logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	level, _ := logging.ParseLevel(cfg.Log.Level)
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: logOut,
	})

	client := graphql.NewClientFromConfig(&cfg.API, logger)
	model := tui.New(cmd.Context(), client,
		contact.WithLogger(logger),
		contact.WithPolicy(formPolicy(cfg)),
	)

	final, err := tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
	if err != nil {
		return fmt.Errorf("terminal form failed: %w", err)
	}

	if m, ok := final.(tui.Model); ok && m.Location() != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Navigated to %s\n", m.Location())
	}
	return nil
}

func openLogFile(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	f, err := tea.LogToFile(path, "contactform")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}
