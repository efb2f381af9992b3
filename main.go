// Command erp-console is the terminal admin console for ERP master data.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Ruturaj2003/r-L-Tech/internal/api"
	"github.com/Ruturaj2003/r-L-Tech/internal/config"
	"github.com/Ruturaj2003/r-L-Tech/internal/logger"
	"github.com/Ruturaj2003/r-L-Tech/internal/othermaster"
	"github.com/Ruturaj2003/r-L-Tech/internal/querycache"
)

const eventsFile = "ui-events.ndjson"

var (
	configDir string
	envFile   string
)

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"api":       config.KeyBaseURL,
	"token":     config.KeyToken,
	"scope":     config.KeyScopeID,
	"user":      config.KeyUserID,
	"page-size": config.KeyPageSize,
	"theme":     config.KeyTheme,
	"log-level": config.KeyLogLevel,
}

var rootCmd = &cobra.Command{
	Use:           config.AppName,
	Short:         "Browse and maintain ERP master data",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&configDir, "config-dir", config.DefaultDir(), "directory holding config.yaml, ui.yaml and logs")
	f.StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	f.String("api", "", "backend base URL")
	f.String("token", "", "bearer token sent with every request")
	f.Int("scope", 0, "subscription scope id")
	f.Int("user", 0, "acting user id")
	f.Int("page-size", 0, "rows per page")
	f.String("theme", "", "preview theme: auto, light or dark")
	f.String("log-level", "", "log level: debug, info, warn or error")
}

func run(cmd *cobra.Command, _ []string) error {
	v := config.New(configDir)
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	cfg, err := config.Load(v, envFile)
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log, closer, err := logger.OpenFile(cfg.LogFile, level)
	if err != nil {
		return err
	}
	defer closer.Close()

	client, err := api.NewClient(api.Options{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Token:   api.StaticToken(cfg.Session.Token),
		Logger:  log,
	})
	if err != nil {
		return err
	}

	ui, uiPath := loadUIConfig(cfg.Dir)
	theme := markdownThemeFromString(cfg.Theme)
	if cmd.Flags().Changed("theme") {
		ui.Theme = string(theme)
	} else if ui.Theme != "" {
		theme = markdownThemeFromString(ui.Theme)
	}
	setMarkdownTheme(theme)
	if cmd.Flags().Changed("page-size") {
		ui.PageSize = cfg.PageSize
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	m, err := newModel(deps{
		ctx:      ctx,
		service:  othermaster.NewService(client, querycache.New(), log),
		session:  cfg.Session,
		logger:   log,
		events:   newEventTrail(filepath.Join(cfg.Dir, eventsFile), cfg.Session.UserID, cfg.Session.ScopeID),
		ui:       ui,
		uiPath:   uiPath,
		pageSize: cfg.PageSize,
		debounce: cfg.SearchDebounce,
		theme:    theme,
	})
	if err != nil {
		return err
	}

	log.Info("console started", "api", cfg.BaseURL, "session", cfg.Session.String())
	_, err = tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	).Run()
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
