package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/existflow/dayboard/internal/config"
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Choose where data is stored",
}

var remoteSetCmd = &cobra.Command{
	Use:   "set <url>",
	Short: "Use a dayboard server",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemoteSet,
}

var remoteLocalCmd = &cobra.Command{
	Use:   "local",
	Short: "Use the local database",
	Args:  cobra.NoArgs,
	RunE:  runRemoteLocal,
}

var remoteShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current backend",
	Args:  cobra.NoArgs,
	RunE:  runRemoteShow,
}

func init() {
	remoteCmd.AddCommand(remoteSetCmd)
	remoteCmd.AddCommand(remoteLocalCmd)
	remoteCmd.AddCommand(remoteShowCmd)
}

func runRemoteSet(cmd *cobra.Command, args []string) error {
	u, err := url.Parse(args[0])
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server url %q", args[0])
	}

	cfg := appConfig
	changed := cfg.ServerURL != args[0]
	cfg.Backend = config.BackendRemote
	cfg.ServerURL = args[0]
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	// a login for another server is of no use
	if changed {
		client, err := newClient(cfg)
		if err != nil {
			return err
		}
		if err := client.SetServer(cfg.ServerURL); err != nil {
			return err
		}
	}

	fmt.Printf("✅ Using server %s\n", cfg.ServerURL)
	fmt.Println("   Sign in with 'dayboard auth login' to edit.")
	return nil
}

func runRemoteLocal(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	cfg.Backend = config.BackendLocal
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Printf("✅ Using local database %s\n", cfg.DBPath)
	return nil
}

func runRemoteShow(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	fmt.Printf("Backend: %s\n", cfg.Backend)
	if cfg.Backend == config.BackendRemote {
		fmt.Printf("Server:  %s\n", cfg.ServerURL)
	} else {
		fmt.Printf("Database: %s\n", cfg.DBPath)
	}
	return nil
}
