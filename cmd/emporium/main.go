// Command emporium runs the Magical Emporium storefront and its tooling.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/iyhunko/magical-emporium/internal/config"
	"github.com/iyhunko/magical-emporium/internal/logger"
	"github.com/spf13/cobra"
)

var (
	conf      *config.Config
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "emporium",
	Short: "Magical Emporium: an AI-stocked storefront for magic items",
	Long: `Magical Emporium serves a public catalog of generated magic items and a
password protected admin panel that conjures new ones with Gemini.

Running without a subcommand starts the web server.`,
	SilenceUsage:       true,
	PersistentPreRunE:  loadConfig,
	PersistentPostRunE: closeLogger,
	RunE:               runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, generateCmd, notifyCmd)
}

func loadConfig(*cobra.Command, []string) error {
	var err error
	conf, err = config.Load()
	if err != nil {
		return fmt.Errorf("error while loading config: %w", err)
	}
	logCloser = logger.InitJSONLogger(conf.Log.Level, conf.Log.File)
	return nil
}

func closeLogger(*cobra.Command, []string) error {
	if logCloser != nil {
		return logCloser.Close()
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
