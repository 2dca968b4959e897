package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/cipherledger/internal/adapter/http/dto"
	"github.com/iho/cipherledger/internal/domain"
	"github.com/iho/cipherledger/internal/infrastructure/config"
	"github.com/iho/cipherledger/internal/infrastructure/encryption"
	"github.com/iho/cipherledger/internal/infrastructure/logger"
	"github.com/iho/cipherledger/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "cipherledger-cli",
		Short:        "CipherLedger CLI tool",
		Long:         `A command line interface for interacting with the CipherLedger API.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the CipherLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(keygenCmd(), transferCmd(), entryCmd(), revealCmd(), migrateCmd())
	return rootCmd
}

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate an RSA key pair for field encryption",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := encryption.GenerateKeyPair()
			if err != nil {
				return err
			}
			pub, err := encryption.EncodePublicKey(&priv.PublicKey)
			if err != nil {
				return err
			}
			encodedPriv, err := encryption.EncodePrivateKey(priv)
			if err != nil {
				return err
			}

			fmt.Printf("RSA_PUBLIC_KEY=%s\n", pub)
			fmt.Printf("RSA_PRIVATE_KEY=%s\n", encodedPriv)
			return nil
		},
	}
}

func transferCmd() *cobra.Command {
	var sender, receiver, amount string

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Submit a transfer intent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}

			// Sent as a JSON number in plain form so the scale survives.
			payload, err := json.Marshal(struct {
				AccountSender   string      `json:"accountSender"`
				AccountReceiver string      `json:"accountReceiver"`
				TransferAmount  json.Number `json:"transferAmount"`
			}{
				AccountSender:   sender,
				AccountReceiver: receiver,
				TransferAmount:  json.Number(domain.PlainAmount(value)),
			})
			if err != nil {
				return err
			}

			body, err := doRequest(http.MethodPost, "/api/v1/transactions/info", payload)
			if err != nil {
				return err
			}
			return printRaw(body)
		},
	}

	cmd.Flags().StringVar(&sender, "sender", "", "Sender account")
	cmd.Flags().StringVar(&receiver, "receiver", "", "Receiver account")
	cmd.Flags().StringVar(&amount, "amount", "", "Transfer amount")
	_ = cmd.MarkFlagRequired("sender")
	_ = cmd.MarkFlagRequired("receiver")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func entryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entry [entry-id]",
		Short: "Show a persisted ledger entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := doRequest(http.MethodGet, "/api/v1/transactions/"+url.PathEscape(args[0]), nil)
			if err != nil {
				return err
			}

			var envelope struct {
				Data dto.TransactionResponse `json:"data"`
			}
			if err := json.Unmarshal(body, &envelope); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			entry := envelope.Data

			fmt.Printf("%-6s %-28s %-24s %-6s %12s %12s %s\n", "ID", "ENTRY", "ACCOUNT", "KEY", "DEBIT", "CREDIT", "TIME")
			fmt.Printf("%-6d %-28s %-24s %-6s %12s %12s %s\n",
				entry.ID,
				truncate(entry.TransactionID, 28),
				truncate(entry.Account, 24),
				entry.AccountKeyID,
				entry.InDebt,
				entry.Have,
				entry.Time.Format(time.RFC3339))
			return nil
		},
	}
}

func revealCmd() *cobra.Command {
	var keyID, currentKeyID, key, previous string

	cmd := &cobra.Command{
		Use:   "reveal [ciphertext]",
		Short: "Decrypt an at-rest account value",
		Long: `Decrypt an at-rest account value with the keyring built from
AT_REST_KEY_ID, AT_REST_KEY and AT_REST_PREVIOUS_KEYS. Pass --key-id with the
accountKeyID of the entry when it was sealed under a retired key.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if currentKeyID != "" {
				cfg.AtRestKeyID = currentKeyID
			}
			if key != "" {
				cfg.AtRestKey = key
			}
			if previous != "" {
				cfg.AtRestPreviousKeys = previous
			}

			keyring, err := cfg.Keyring()
			if err != nil {
				return err
			}

			sealedWith := keyID
			if sealedWith == "" {
				sealedWith = keyring.CurrentID()
			}

			account, err := keyring.Open(sealedWith, args[0])
			if err != nil {
				return err
			}

			fmt.Println(account)
			return nil
		},
	}

	cmd.Flags().StringVar(&keyID, "key-id", "", "Key id the value was sealed with (default: current key id)")
	cmd.Flags().StringVar(&currentKeyID, "current-key-id", "", "Override AT_REST_KEY_ID")
	cmd.Flags().StringVar(&key, "key", "", "Override AT_REST_KEY")
	cmd.Flags().StringVar(&previous, "previous-keys", "", "Override AT_REST_PREVIOUS_KEYS (id:key,...)")

	return cmd
}

func migrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations on DATABASE_URL",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(postgres.RunMigrations)
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(postgres.RunMigrationsDown)
		},
	}

	migrateCmd.AddCommand(upCmd, downCmd)
	return migrateCmd
}

func runMigration(fn func(databaseURL, migrationsPath string, logger zerolog.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Output: os.Stderr})
	return fn(cfg.DatabaseURL, cfg.MigrationsPath, log)
}

func doRequest(method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("request failed (status: %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	return body, nil
}

func printRaw(body []byte) error {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	printJSON(v)
	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to encode output: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
