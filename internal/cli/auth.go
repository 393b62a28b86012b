package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/existflow/dayboard/internal/remote"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Manage your account on the dayboard server. Editing needs an admin account.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the server",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from the server",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account on the server",
	RunE:  runRegister,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the signed in account",
	RunE:  runStatus,
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(statusCmd)
}

func readLine(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	client, err := newClient(appConfig)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	username := readLine(reader, "Username: ")
	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	fmt.Printf("🔄 Logging in to %s...\n", client.Server())
	if err := client.Login(cmd.Context(), username, password); err != nil {
		return err
	}

	fmt.Println("✅ Logged in successfully!")
	return reportAccount(cmd, client)
}

func runLogout(cmd *cobra.Command, args []string) error {
	client, err := newClient(appConfig)
	if err != nil {
		return err
	}

	if !client.IsLoggedIn() {
		fmt.Println("Not logged in.")
		return nil
	}

	fmt.Println("🔄 Logging out...")
	if err := client.Logout(cmd.Context()); err != nil {
		return err
	}

	fmt.Println("✅ Logged out successfully.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	client, err := newClient(appConfig)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	username := readLine(reader, "Username: ")
	email := readLine(reader, "Email: ")

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := readPassword("Confirm Password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	fmt.Println("🔄 Creating account...")
	if err := client.Register(cmd.Context(), username, email, password); err != nil {
		return err
	}

	fmt.Println("✅ Account created and logged in!")
	return reportAccount(cmd, client)
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := newClient(appConfig)
	if err != nil {
		return err
	}

	fmt.Printf("Server:  %s\n", client.Server())
	fmt.Printf("Backend: %s\n", appConfig.Backend)
	if !client.IsLoggedIn() {
		fmt.Println("Account: not logged in (read-only)")
		return nil
	}
	return reportAccount(cmd, client)
}

func reportAccount(cmd *cobra.Command, client *remote.Client) error {
	me, err := client.Me(cmd.Context())
	if errors.Is(err, remote.ErrUnauthorized) {
		fmt.Println("Account: session expired, run 'dayboard auth login'")
		return nil
	}
	if err != nil {
		return err
	}

	access := "read-only"
	if me.IsAdmin {
		access = "can edit"
	}
	fmt.Printf("Account: %s (%s)\n", me.Username, access)
	return nil
}
