// Package main provides the vault administrative CLI: config bootstrap,
// sprint and escrow inspection, and token ledger utilities.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ANISH-SR/StreamVault/internal/platform/config"
	"github.com/ANISH-SR/StreamVault/internal/platform/otel"
	"github.com/ANISH-SR/StreamVault/internal/services/vault/app"
	"github.com/ANISH-SR/StreamVault/internal/services/vault/domain"
	vaultsqlite "github.com/ANISH-SR/StreamVault/internal/services/vault/storage/sqlite"
)

type cliEnv struct {
	DBPath string `env:"STREAMVAULT_DB_PATH"`
}

func loadCLIEnv() cliEnv {
	var cfg cliEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "streamvault.db")
	}
	return cfg
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: vault [flags] <command> [args]

Commands:
  init-config <authority> <mint:decimals:min_withdrawal>[,...] <min_escrow> <max_escrow_duration>
  show-config
  add-mint <authority> <mint:decimals:min_withdrawal>
  set-paused <authority> <true|false>
  list-sprints <employer>
  list-escrows <depositor>
  create-account <id> <owner> <mint>
  credit <id> <amount>
  balance <id>

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	env := loadCLIEnv()
	var dbPath string
	flag.StringVar(&dbPath, "db-path", env.DBPath, "path to sqlite database (default: STREAMVAULT_DB_PATH or data/streamvault.db)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	shutdown, err := otel.Setup(ctx, "streamvault-vault")
	if err != nil {
		config.Exitf("otel setup: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("otel shutdown error=%v", err)
		}
	}()

	store, err := vaultsqlite.Open(dbPath)
	if err != nil {
		config.Exitf("open store: %v", err)
	}
	defer store.Close()

	service := app.NewService(store)
	if err := run(ctx, service, store, flag.Args()); err != nil {
		config.Exitf("%s: %v", flag.Arg(0), err)
	}
}

func run(ctx context.Context, service *app.Service, store *vaultsqlite.Store, args []string) error {
	command, rest := args[0], args[1:]
	switch command {
	case "init-config":
		if len(rest) != 4 {
			return fmt.Errorf("expected <authority> <mints> <min_escrow> <max_escrow_duration>")
		}
		mints, err := parseMints(rest[1])
		if err != nil {
			return err
		}
		var minEscrow uint64
		if _, err := fmt.Sscanf(rest[2], "%d", &minEscrow); err != nil {
			return fmt.Errorf("parse min escrow amount: %w", err)
		}
		maxDuration, err := time.ParseDuration(rest[3])
		if err != nil {
			return fmt.Errorf("parse max escrow duration: %w", err)
		}
		cfg, err := service.InitializeConfig(ctx, rest[0], mints, minEscrow, maxDuration)
		if err != nil {
			return err
		}
		return printJSON(cfg)

	case "show-config":
		cfg, err := service.GetConfig(ctx)
		if err != nil {
			return err
		}
		return printJSON(cfg)

	case "add-mint":
		if len(rest) != 2 {
			return fmt.Errorf("expected <authority> <mint:decimals:min_withdrawal>")
		}
		mints, err := parseMints(rest[1])
		if err != nil {
			return err
		}
		cfg, err := service.AddMint(ctx, app.Caller{Account: rest[0]}, mints[0])
		if err != nil {
			return err
		}
		return printJSON(cfg)

	case "set-paused":
		if len(rest) != 2 {
			return fmt.Errorf("expected <authority> <true|false>")
		}
		cfg, err := service.SetConfigPaused(ctx, app.Caller{Account: rest[0]}, rest[1] == "true")
		if err != nil {
			return err
		}
		return printJSON(cfg)

	case "list-sprints":
		if len(rest) != 1 {
			return fmt.Errorf("expected <employer>")
		}
		sprints, err := service.ListSprints(ctx, rest[0])
		if err != nil {
			return err
		}
		return printJSON(sprints)

	case "list-escrows":
		if len(rest) != 1 {
			return fmt.Errorf("expected <depositor>")
		}
		escrows, err := service.ListEscrows(ctx, rest[0])
		if err != nil {
			return err
		}
		return printJSON(escrows)

	case "create-account":
		if len(rest) != 3 {
			return fmt.Errorf("expected <id> <owner> <mint>")
		}
		return store.CreateAccount(ctx, rest[0], rest[1], rest[2])

	case "credit":
		if len(rest) != 2 {
			return fmt.Errorf("expected <id> <amount>")
		}
		var amount uint64
		if _, err := fmt.Sscanf(rest[1], "%d", &amount); err != nil {
			return fmt.Errorf("parse amount: %w", err)
		}
		return store.Credit(ctx, rest[0], amount)

	case "balance":
		if len(rest) != 1 {
			return fmt.Errorf("expected <id>")
		}
		balance, err := store.Balance(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Println(balance)
		return nil

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// parseMints parses a comma-separated list of mint:decimals:min_withdrawal
// triples.
func parseMints(raw string) ([]domain.MintInfo, error) {
	parts := strings.Split(raw, ",")
	mints := make([]domain.MintInfo, 0, len(parts))
	for _, part := range parts {
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("mint %q: expected mint:decimals:min_withdrawal", part)
		}
		var decimals uint8
		if _, err := fmt.Sscanf(fields[1], "%d", &decimals); err != nil {
			return nil, fmt.Errorf("mint %q decimals: %w", part, err)
		}
		var minWithdrawal uint64
		if _, err := fmt.Sscanf(fields[2], "%d", &minWithdrawal); err != nil {
			return nil, fmt.Errorf("mint %q min withdrawal: %w", part, err)
		}
		mints = append(mints, domain.MintInfo{
			Address:       fields[0],
			Decimals:      decimals,
			MinWithdrawal: minWithdrawal,
		})
	}
	return mints, nil
}

func printJSON(value any) error {
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
