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

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/jefwallets/ledger/internal/infrastructure/config"
	"github.com/jefwallets/ledger/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ledger-cli",
		Short: "Wallet ledger CLI tool",
		Long:  `A command line interface for interacting with the wallet ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(recordEntryCmd())
	rootCmd.AddCommand(recordTransferCmd())
	rootCmd.AddCommand(balanceCmd())
	rootCmd.AddCommand(entriesCmd())
	rootCmd.AddCommand(transfersCmd())
	rootCmd.AddCommand(verifyFundsCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func recordEntryCmd() *cobra.Command {
	var (
		entryID      string
		account      string
		counterparty string
		cpName       string
		entryType    string
		amount       string
		description  string
		createdBy    string
	)

	cmd := &cobra.Command{
		Use:   "record-entry",
		Short: "Record a single ledger entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if entryID == "" {
				entryID = ulid.Make().String()
			}

			payload := map[string]any{
				"entry_id":                    entryID,
				"account_number":              account,
				"counterparty_account_number": counterparty,
				"counterparty_name":           cpName,
				"entry_type":                  entryType,
				"amount":                      amount,
				"description":                 description,
				"created_by":                  createdBy,
			}

			return postJSON("/api/v1/ledger/entries", payload)
		},
	}

	cmd.Flags().StringVar(&entryID, "entry-id", "", "Entry ID (generated when omitted)")
	cmd.Flags().StringVar(&account, "account", "", "Account number")
	cmd.Flags().StringVar(&counterparty, "counterparty", "", "Counterparty account number")
	cmd.Flags().StringVar(&cpName, "counterparty-name", "", "Counterparty name")
	cmd.Flags().StringVar(&entryType, "type", "", "Entry type (credit or debit)")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&createdBy, "created-by", "", "Creator staff ID")

	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("counterparty")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("created-by")

	return cmd
}

func recordTransferCmd() *cobra.Command {
	var (
		transactionID string
		sender        string
		senderName    string
		receiver      string
		receiverName  string
		amount        string
		description   string
		createdBy     string
	)

	cmd := &cobra.Command{
		Use:   "record-transfer",
		Short: "Record a double-entry transfer",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]any{
				"transaction_id":          transactionID,
				"creator_account_number":  sender,
				"sender_account_number":   sender,
				"sender_name":             senderName,
				"receiver_account_number": receiver,
				"receiver_name":           receiverName,
				"amount":                  amount,
				"description":             description,
				"created_by":              createdBy,
			}

			return postJSON("/api/v1/ledger/transfers", payload)
		},
	}

	cmd.Flags().StringVar(&transactionID, "transaction-id", "", "Transaction ID")
	cmd.Flags().StringVar(&sender, "sender", "", "Sender account number")
	cmd.Flags().StringVar(&senderName, "sender-name", "", "Sender name")
	cmd.Flags().StringVar(&receiver, "receiver", "", "Receiver account number")
	cmd.Flags().StringVar(&receiverName, "receiver-name", "", "Receiver name")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&createdBy, "created-by", "", "Creator staff ID")

	_ = cmd.MarkFlagRequired("transaction-id")
	_ = cmd.MarkFlagRequired("sender")
	_ = cmd.MarkFlagRequired("receiver")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("created-by")

	return cmd
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account-number>",
		Short: "Get the latest balance for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/accounts/" + url.PathEscape(args[0]) + "/balance")
		},
	}
}

func entriesCmd() *cobra.Command {
	var (
		order string
		role  string
	)

	cmd := &cobra.Command{
		Use:   "entries <account-number>",
		Short: "List ledger entries for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if order != "" {
				q.Set("order", order)
			}
			if role != "" {
				q.Set("role", role)
			}

			path := "/api/v1/accounts/" + url.PathEscape(args[0]) + "/entries"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			return getJSON(path)
		},
	}

	cmd.Flags().StringVar(&order, "order", "", "Sort order (asc or desc)")
	cmd.Flags().StringVar(&role, "role", "", "List entries naming the account as counterparty")

	return cmd
}

func transfersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfers <account-number>",
		Short: "List reconciled transfers for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/accounts/" + url.PathEscape(args[0]) + "/transfers")
		},
	}
}

func verifyFundsCmd() *cobra.Command {
	var amount string

	cmd := &cobra.Command{
		Use:   "verify-funds <account-number>",
		Short: "Check whether an account covers an amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("amount", amount)

			return getJSON("/api/v1/accounts/" + url.PathEscape(args[0]) + "/funds/verify?" + q.Encode())
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Amount to verify")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			return postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			return postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath)
		},
	})

	return cmd
}

func postJSON(path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func getJSON(path string) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
	} else {
		fmt.Println(pretty.String())
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	return nil
}
