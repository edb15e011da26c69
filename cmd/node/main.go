package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/shu8h0-null/minledger/core"
	"github.com/shu8h0-null/minledger/core/config"
	"github.com/shu8h0-null/minledger/core/logger"
	"github.com/urfave/cli/v3"
)

var log = logger.NewLogger()

func main() {
	cmd := &cli.Command{
		Name:  "minledger-node",
		Usage: "run a single-node proof-of-work ledger over HTTP and JSON-RPC",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   config.DefaultHTTPAddr,
				Usage:   "address the HTTP API and JSON-RPC endpoint listen on",
				Sources: cli.EnvVars("MINLEDGER_ADDR"),
			},
			&cli.IntFlag{
				Name:    "difficulty",
				Value:   config.DefaultDifficulty,
				Usage:   "leading zero hex digits a block hash needs",
				Sources: cli.EnvVars("MINLEDGER_DIFFICULTY"),
			},
			&cli.StringFlag{
				Name:    "reward",
				Value:   fmt.Sprint(config.DefaultMiningReward),
				Usage:   "amount credited to the miner of each block",
				Sources: cli.EnvVars("MINLEDGER_REWARD"),
			},
			&cli.StringFlag{
				Name:    "archive-dir",
				Value:   config.ArchiveDir(),
				Usage:   "directory of the block journal, reset on every start",
				Sources: cli.EnvVars("MINLEDGER_ARCHIVE_DIR"),
			},
			&cli.BoolFlag{
				Name:    "no-archive",
				Usage:   "do not journal sealed blocks",
				Sources: cli.EnvVars("MINLEDGER_NO_ARCHIVE"),
			},
			&cli.BoolFlag{
				Name:    "strict-addresses",
				Usage:   "accept only base58check addresses",
				Sources: cli.EnvVars("MINLEDGER_STRICT_ADDRESSES"),
			},
		},
		Action: runNode,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Errorf("%v\n", err)
		os.Exit(1)
	}
}

func runNode(ctx context.Context, cmd *cli.Command) error {
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}

	log.Info("Starting node...")
	node, err := core.NewNode(cfg)
	if err != nil {
		return fmt.Errorf("Error initialising node: %w", err)
	}
	return node.Run(ctx)
}

func configFromFlags(cmd *cli.Command) (config.Config, error) {
	cfg := config.Default()
	cfg.HTTPAddr = cmd.String("addr")
	cfg.Difficulty = int(cmd.Int("difficulty"))
	cfg.ArchiveDir = cmd.String("archive-dir")
	cfg.StrictAddresses = cmd.Bool("strict-addresses")
	if cmd.Bool("no-archive") {
		cfg.ArchiveDir = ""
	}

	reward, err := decimal.NewFromString(cmd.String("reward"))
	if err != nil {
		return cfg, fmt.Errorf("invalid reward %q: %w", cmd.String("reward"), err)
	}
	cfg.MiningReward = reward

	return cfg, cfg.Validate()
}
