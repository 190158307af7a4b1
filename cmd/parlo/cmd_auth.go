package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"parlo/client/internal/session"
)

var (
	loginEmail    string
	loginPassword string
	registerName  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save the session",
	Long: `Log in with your Parlo account and save the session token locally.

Email and password can be passed as flags; anything missing is prompted
for on stdin.`,
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the saved session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE:  runWhoami,
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, password, err := credentials()
	if err != nil {
		return err
	}

	result, err := current.client.Login(cmd.Context(), email, password)
	if err != nil {
		return friendly(err)
	}
	if err := saveSession(result.Token, result.UserID(), result.User.Name); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s\n", result.User.Name)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(registerName)
	if name == "" {
		var err error
		name, err = prompt("Name: ")
		if err != nil {
			return err
		}
	}
	email, password, err := credentials()
	if err != nil {
		return err
	}

	result, err := current.client.Register(cmd.Context(), name, email, password)
	if err != nil {
		return friendly(err)
	}
	if err := saveSession(result.Token, result.UserID(), result.User.Name); err != nil {
		return err
	}
	fmt.Printf("Welcome to Parlo, %s\n", result.User.Name)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := current.sessions.Clear(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	fmt.Println("Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	identity, ok := current.resolver.Current()
	if !ok {
		fmt.Println("Not logged in")
		return nil
	}
	if identity.Name != "" {
		fmt.Printf("%s (%s)\n", identity.Name, identity.ID)
	} else {
		fmt.Println(identity.ID)
	}
	return nil
}

func saveSession(token, userID, userName string) error {
	record := session.Record{
		Token:    token,
		UserID:   userID,
		UserName: userName,
		SavedAt:  time.Now(),
	}
	if err := current.sessions.Save(record); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func credentials() (email, password string, err error) {
	email = strings.TrimSpace(loginEmail)
	if email == "" {
		if email, err = prompt("Email: "); err != nil {
			return "", "", err
		}
	}
	password = loginPassword
	if password == "" {
		if password, err = prompt("Password: "); err != nil {
			return "", "", err
		}
	}
	return email, password, nil
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	registerCmd.Flags().StringVar(&registerName, "name", "", "display name")
	registerCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	registerCmd.Flags().StringVar(&loginPassword, "password", "", "account password")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}
