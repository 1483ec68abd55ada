package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/conneroisu/contactform/internal/graphql"
	"github.com/conneroisu/contactform/internal/logging"
	"github.com/conneroisu/contactform/internal/server"
	"github.com/conneroisu/contactform/internal/view"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Serve the New Contact form",
	Long: `Serve the New Contact form over HTTP.

The page works as a plain HTML form and upgrades to a live WebSocket session
when JavaScript is available. Saving sends the createContact mutation to the
configured GraphQL endpoint. Cancel returns to /contacts.

Changing log.level in the config file takes effect without a restart.

Examples:
  contactform serve
  contactform serve --port 3000 --open
  CONTACTFORM_API_ENDPOINT=https://api.example.com/graphql contactform serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().Bool("open", false, "Open the form in a browser")
	serveCmd.Flags().String("environment", "development", "Environment (development, production)")
	serveCmd.Flags().StringSlice("allowed-origins", nil, "Extra origins allowed to open live sessions")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.open", serveCmd.Flags().Lookup("open"))
	viper.BindPFlag("server.environment", serveCmd.Flags().Lookup("environment"))
	viper.BindPFlag("server.allowed_origins", serveCmd.Flags().Lookup("allowed-origins"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	client := graphql.NewClientFromConfig(&cfg.API, logger)
	srv := server.New(cfg, client, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving New Contact at %s%s\n", cfg.Server.URL(), view.SubmitPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Submitting to %s\n", client.Endpoint())

	return serveWithWatcher(ctx, srv.Start, viper.GetViper(), logger)
}

// serveWithWatcher runs the server next to the config watcher. The watcher
// stops when the server returns or ctx ends.
func serveWithWatcher(ctx context.Context, start func(context.Context) error, v *viper.Viper, logger *logging.ContactLogger) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return start(ctx)
	})
	g.Go(func() error {
		watchLogLevel(ctx, v, logger)
		<-ctx.Done()
		logger.Debug(context.WithoutCancel(ctx), "Stopped applying config changes")
		return nil
	})
	return g.Wait()
}

// watchLogLevel applies log.level changes from the config file to logger
// until ctx ends. Other keys need a restart.
func watchLogLevel(ctx context.Context, v *viper.Viper, logger *logging.ContactLogger) {
	if v.ConfigFileUsed() == "" {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if ctx.Err() != nil {
			return
		}
		level, err := logging.ParseLevel(v.GetString("log.level"))
		if err != nil {
			logger.Warn(ctx, err, "Ignoring invalid log level from config", "file", e.Name)
			return
		}
		if level == logger.Level() {
			return
		}
		logger.SetLevel(level)
		logger.Info(ctx, "Log level changed", "level", level.String(), "file", e.Name)
	})
	v.WatchConfig()
}
