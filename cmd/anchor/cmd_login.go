package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/anchorvcs/anchor/internal/client"
)

var loginServer string

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Authenticate against an anchor server and remember the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]
		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		acct := client.NewAccountClient(loginServer, "")
		token, twoFA, err := acct.Login(context.Background(), username, password)
		if err != nil {
			return err
		}
		if twoFA {
			code, err := promptLine("2FA code: ")
			if err != nil {
				return err
			}
			token, err = acct.LoginTwoFactor(context.Background(), username, code)
			if err != nil {
				return err
			}
		}

		return persistSession(loginServer, token)
	},
}

var sshLoginKeyID string
var sshLoginIdentity string

var sshLoginCmd = &cobra.Command{
	Use:   "ssh-login <username>",
	Short: "Authenticate via a challenge signed by an SSH private key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]
		ctx := context.Background()
		acct := client.NewAccountClient(loginServer, "")

		challenge, err := acct.SSHChallenge(ctx, username)
		if err != nil {
			return err
		}

		signer, err := loadSigner(sshLoginIdentity)
		if err != nil {
			return err
		}
		rawSig, err := signChallenge(signer, challenge)
		if err != nil {
			return err
		}
		signature := base64.StdEncoding.EncodeToString(rawSig)

		token, err := acct.SSHLogin(ctx, username, sshLoginKeyID, signature)
		if err != nil {
			return err
		}
		return persistSession(loginServer, token)
	},
}

func persistSession(serverURL, token string) error {
	session, err := loadSession()
	if err != nil {
		return err
	}
	session.Set("server.url", serverURL)
	session.Set("server.token", token)
	if err := saveSession(session); err != nil {
		return err
	}
	printSuccess("logged in to %s", serverURL)
	return nil
}

func promptLine(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fmt.Print(label)
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func init() {
	loginCmd.Flags().StringVar(&loginServer, "server", "http://localhost:8080", "anchor server base URL")
	sshLoginCmd.Flags().StringVar(&loginServer, "server", "http://localhost:8080", "anchor server base URL")
	sshLoginCmd.Flags().StringVar(&sshLoginKeyID, "key-id", "", "registered key id to authenticate with")
	sshLoginCmd.Flags().StringVar(&sshLoginIdentity, "identity", "", "path to the private key file")
	sshLoginCmd.MarkFlagRequired("key-id")
	sshLoginCmd.MarkFlagRequired("identity")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(sshLoginCmd)
}
