package main

import (
	"fmt"
	"io"
	"os"

	"github.com/nconklindev/sheetview/internal/config"
	"github.com/nconklindev/sheetview/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type flags struct {
	configPath string
	pageSize   int
	logFile    string
	logLevel   string
	strict     bool
}

func newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           "sheetview [files...]",
		Short:         "Browse CSV and Excel files in the terminal",
		Long:          "sheetview loads CSV and Excel workbooks into an interactive table with filtering, sorting, pagination and column layout controls.",
		Version:       fmt.Sprintf("%s\ncommit: %s\nbuilt: %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd, f)
			if err != nil {
				return err
			}

			log, closeLog, err := newLogger(settings)
			if err != nil {
				return err
			}
			defer closeLog()

			log.WithFields(logrus.Fields{"version": version, "files": len(args)}).Info("starting")

			p := tea.NewProgram(ui.New(ui.Options{
				Settings: settings,
				Files:    args,
				Log:      log,
			}), tea.WithAltScreen(), tea.WithMouseCellMotion())
			if _, err := p.Run(); err != nil {
				log.WithError(err).Error("program exited")
				return err
			}
			return nil
		},
	}
	cmd.SetVersionTemplate("sheetview {{.Version}}\n")

	cmd.Flags().StringVar(&f.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/sheetview/config.yaml)")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "rows per page")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "write logs to this file")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "discard the whole batch if any file fails to load")
	return cmd
}

// loadSettings reads the config file and applies any flags the user set.
func loadSettings(cmd *cobra.Command, f flags) (config.Settings, error) {
	path := f.configPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}

	s, err := config.Load(path)
	if err != nil {
		return s, err
	}

	changed := cmd.Flags().Changed
	if changed("page-size") {
		s.PageSize = f.pageSize
	}
	if changed("log-file") {
		s.LogFile = f.logFile
	}
	if changed("log-level") {
		s.LogLevel = f.logLevel
	}
	if changed("strict") {
		s.StrictBatch = f.strict
	}
	return s, s.Validate()
}

// newLogger logs to the configured file. The terminal belongs to the TUI, so
// without a file nothing is logged.
func newLogger(s config.Settings) (*logrus.Logger, func(), error) {
	log := logrus.New()
	log.SetLevel(s.Level())
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})

	if s.LogFile == "" {
		log.SetOutput(io.Discard)
		return log, func() {}, nil
	}

	file, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(file)
	return log, func() { _ = file.Close() }, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
