package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/dayboard/internal/config"
	"github.com/existflow/dayboard/internal/logger"
)

var (
	logLevel   string
	logFile    string
	logConsole bool
	backend    string

	// appConfig is loaded once per invocation by the root command
	appConfig = config.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "dayboard",
	Short: "Dayboard - calendar, daily routine and deadlines in the terminal",
	Long: `Dayboard keeps DAILY routines, DAY tasks and DUE deadlines next to a
month calendar of schedules. Data lives in a local SQLite file or on a
dayboard-server.

Run 'dayboard' without arguments to launch the interactive TUI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config from file (or defaults if not exists)
		cfg, err := config.Load()
		if err != nil {
			logger.Warn("Failed to load config, using defaults", logger.F("error", err))
			cfg = config.DefaultConfig()
		}

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
			configChanged = true
		}
		if cmd.Flags().Changed("backend") {
			cfg.Backend = backend
			configChanged = true
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		// Save config if changed via CLI flags
		if configChanged {
			if err := cfg.Save(); err != nil {
				logger.Warn("Failed to save config", logger.F("error", err))
			}
		}
		appConfig = cfg

		logConfig := logger.Config{
			Level:      logger.ParseLevel(cfg.LogLevel),
			FilePath:   cfg.LogFile,
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxAge:     7,
			MaxBackups: 5,
			Console:    cfg.LogConsole,
		}

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("Dayboard started", logger.F("command", cmd.Name()), logger.F("backend", cfg.Backend))
		return nil
	},

	RunE: runTUI,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("Dayboard exiting", logger.F("command", cmd.Name()))
		logger.Close()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "Data backend (local, remote)")

	// Add subcommands
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(upcomingCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(remoteCmd)
}
