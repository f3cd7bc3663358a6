// wardctl is the operator CLI: hash a password with the engine's argon2id
// settings, apply the Postgres schema, or seed a first account.
//
// Connection settings come from flags or from the environment (a local
// .env file is loaded when present):
//
//	WARD_DATABASE_DSN   Postgres DSN for migrate and seed
//	WARD_TOKEN_SECRET   token secret (seed only, not stored)
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh/terminal"

	ward "github.com/davengard/ward"
	"github.com/davengard/ward/password"
	"github.com/davengard/ward/store/pg"
)

func main() {
	// Best effort; the environment may already be populated.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "wardctl",
		Short:         "Operator tooling for ward deployments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(hashCmd(), migrateCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func hashCmd() *cobra.Command {
	var memoryKB, timeCost uint32
	var parallelism uint8

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Hash a password read from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			hasher, err := password.NewArgon2(password.Config{
				Memory:      memoryKB,
				Time:        timeCost,
				Parallelism: parallelism,
				SaltLength:  16,
				KeyLength:   32,
			})
			if err != nil {
				return err
			}
			plain, err := readPassword("password: ")
			if err != nil {
				return err
			}
			hash, err := hasher.Hash(plain)
			if err != nil {
				return err
			}
			fmt.Println(hash)
			return nil
		},
	}
	cmd.Flags().Uint32Var(&memoryKB, "memory-kb", 64*1024, "argon2 memory in KB")
	cmd.Flags().Uint32Var(&timeCost, "time", 2, "argon2 time cost")
	cmd.Flags().Uint8Var(&parallelism, "parallelism", 2, "argon2 parallelism")
	return cmd
}

func migrateCmd() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the account schema to Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := resolveDSN(dsn)
			if err != nil {
				return err
			}
			db, err := sql.Open("pgx", dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := pg.RunMigrations(ctx, db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "Postgres DSN (env WARD_DATABASE_DSN)")
	return cmd
}

func seedCmd() *cobra.Command {
	var dsn, email string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a verified account directly in Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			dsn, err := resolveDSN(dsn)
			if err != nil {
				return err
			}
			plain, err := readPassword("password: ")
			if err != nil {
				return err
			}
			hasher, err := password.NewArgon2(password.Config{
				Memory: 64 * 1024, Time: 2, Parallelism: 2, SaltLength: 16, KeyLength: 32,
			})
			if err != nil {
				return err
			}
			hash, err := hasher.Hash(plain)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			pool, err := pg.Connect(ctx, dsn)
			if err != nil {
				return err
			}
			defer pool.Close()

			store := pg.New(pool)
			acct := &ward.Account{Email: email, PasswordHash: hash, EmailVerified: true}
			result, err := store.Create(ctx, acct)
			if err != nil {
				return err
			}
			if result != ward.UpdateOK {
				return fmt.Errorf("account %s already exists", email)
			}
			fmt.Printf("created account %d (%s)\n", acct.ID, acct.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "Postgres DSN (env WARD_DATABASE_DSN)")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func resolveDSN(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("WARD_DATABASE_DSN"); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("no DSN (flag --dsn or env WARD_DATABASE_DSN)")
}

func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := terminal.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
