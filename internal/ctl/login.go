package ctl

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var loginPassword string

// loginCmd authenticates against the platform
var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in to the platform",
	Long: `Log in to the platform with the two-phase flow: credentials first,
then the verification code that arrives by email. The session token is
saved to the config file.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

// logoutCmd closes the current session
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out",
	Long:  "Close the current session, or every session with --all",
	RunE:  runLogout,
}

var logoutAll bool

func runLogin(cmd *cobra.Command, args []string) error {
	username := args[0]
	reader := bufio.NewReader(os.Stdin)

	password := loginPassword
	if password == "" {
		fmt.Print("Password: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimSpace(line)
	}

	client := newClient()
	pendingToken, err := client.Login(username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Println("A verification code has been sent to your email.")
	fmt.Print("Verification code: ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read code: %w", err)
	}
	code := strings.TrimSpace(line)

	token, err := client.Verify(pendingToken, code)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	if err := saveToken(token); err != nil {
		return fmt.Errorf("failed to save session token: %w", err)
	}

	printSuccess("✓ Logged in as '%s'", username)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	client := newClient()
	if err := client.Logout(logoutAll); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	if err := saveToken(""); err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}

	if logoutAll {
		printSuccess("✓ Logged out of all devices")
	} else {
		printSuccess("✓ Logged out")
	}
	return nil
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when omitted)")
	logoutCmd.Flags().BoolVar(&logoutAll, "all", false, "close every session across all devices")
}
