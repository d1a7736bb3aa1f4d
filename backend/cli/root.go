// Package cli wires the contractgen commands: the HTTP server and the
// offline batch, pendency and placeholder tools.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AnTengye/contractgen/backend/config"
	"github.com/AnTengye/contractgen/backend/pkg/logger"
)

const defaultConfigFile = "config.yaml"

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "contractgen",
	Short: "Generate contract documents from a Word template and a spreadsheet",
	Long: `contractgen fills a Word template once per spreadsheet row, embeds the
clause print of each contract and packs the documents into a ZIP archive.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config.yaml when present, else built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file when given and sets up logging on out.
func loadConfig(out io.Writer) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	path := configPath
	if path == "" {
		if _, statErr := os.Stat(defaultConfigFile); statErr == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		if _, err := logger.ParseLevel(logLevel); err != nil {
			return nil, err
		}
		cfg.Log.Level = logLevel
	}

	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: out,
	})
	return cfg, nil
}
