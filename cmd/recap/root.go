package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"recap/internal/api"
	"recap/internal/config"
	"recap/internal/logging"
	"recap/internal/store"
	"recap/internal/tui"
)

var version = "dev"

type rootOptions struct {
	configFile string
	file       string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "recap",
		Short: "Summarize meeting transcripts and email the summary",
		Long: `recap is a terminal client for a meeting summarizer service.

Paste a transcript or pick a .txt file, generate a summary, edit it and
send it to a list of recipients.`,
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default ~/.config/recap/config.yaml)")
	config.RegisterFlags(cmd.PersistentFlags())
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "transcript file to select on start")

	cmd.AddCommand(newConfigCommand(opts))
	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "recap"), nil
}

func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	return config.Load(config.Options{
		Dir:     dir,
		File:    opts.configFile,
		EnvFile: ".env",
		Flags:   cmd.Flags(),
	})
}

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	if opts.file != "" {
		if _, err := os.Stat(opts.file); err != nil {
			return fmt.Errorf("transcript file: %w", err)
		}
	}

	logger, closer, err := logging.New(cfg.Logging.File, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Info("recap starting", "version", version, "config", cfg.Source, "api", cfg.API.BaseURL)

	appOpts := []tui.Option{tui.WithLogger(logger)}
	if cfg.History.Enabled {
		db, err := store.NewSQLiteStore(cfg.History.DBPath)
		if err != nil {
			return fmt.Errorf("cannot open history database: %w", err)
		}
		defer db.Close()
		if n, err := db.CountRecipientLists(cmd.Context()); err == nil {
			logger.Info("recipient history opened", "path", cfg.History.DBPath, "lists", n)
		} else {
			logger.Warn("recipient history unreadable", "path", cfg.History.DBPath, "error", err)
		}
		appOpts = append(appOpts, tui.WithHistory(db))
	}
	if opts.file != "" {
		appOpts = append(appOpts, tui.WithInitialFile(opts.file))
	}

	client := api.NewClient(cfg.API.BaseURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
	)
	appModel := tui.NewAppModel(client, appOpts...)
	if _, err := tea.NewProgram(&appModel, tea.WithAltScreen()).Run(); err != nil {
		logger.Error("program exited with error", "error", err)
		return fmt.Errorf("alas, there's been an error: %w", err)
	}
	logger.Info("recap exiting")
	return nil
}
