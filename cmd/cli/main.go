package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/shopspring/decimal"
	"github.com/shu8h0-null/minledger/core/blockchain"
	"github.com/shu8h0-null/minledger/core/rpc"
	"github.com/urfave/cli/v3"
)

const defaultRPCAddr = "http://localhost:4000" + rpc.Path

type clientAction func(ctx context.Context, cmd *cli.Command, client *rpc.Client) error

func main() {
	cmd := &cli.Command{
		Name:  "minledger",
		Usage: "query and drive a minledger node over JSON-RPC",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "rpc",
				Value:   defaultRPCAddr,
				Usage:   "JSON-RPC endpoint of the node",
				Sources: cli.EnvVars("MINLEDGER_RPC"),
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "dump the decoded Go values instead of formatted output",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "chain",
				Usage:  "print every block, genesis first",
				Action: withClient(chainAction),
			},
			{
				Name:  "block",
				Usage: "print one block by hash or height",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "hash",
						Usage: "hash of the block to query",
					},
					&cli.IntFlag{
						Name:  "height",
						Value: -1,
						Usage: "height of the block to query",
					},
				},
				Action: withClient(blockAction),
			},
			{
				Name:      "balance",
				Usage:     "print the confirmed balance of an address",
				ArgsUsage: "ADDRESS",
				Action:    withClient(balanceAction),
			},
			{
				Name:  "send",
				Usage: "submit a transfer to the pending transactions",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Usage: "sender address", Required: true},
					&cli.StringFlag{Name: "to", Usage: "recipient address", Required: true},
					&cli.StringFlag{Name: "amount", Usage: "amount to transfer", Required: true},
				},
				Action: withClient(sendAction),
			},
			{
				Name:  "mine",
				Usage: "seal the pending transactions into a block",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "miner", Usage: "address credited with the reward", Required: true},
				},
				Action: withClient(mineAction),
			},
			{
				Name:   "pending",
				Usage:  "print the transactions waiting for the next block",
				Action: withClient(pendingAction),
			},
			{
				Name:   "stats",
				Usage:  "print the chain height, tip and last seal",
				Action: withClient(statsAction),
			},
			{
				Name:   "verify",
				Usage:  "check the integrity of the whole chain",
				Action: withClient(verifyAction),
			},
			{
				Name:      "address",
				Usage:     "derive the base58check address of a label",
				ArgsUsage: "LABEL",
				Action:    withClient(addressAction),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

func withClient(action clientAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		client, closer, err := rpc.NewClient(ctx, cmd.String("rpc"))
		if err != nil {
			return err
		}
		defer closer()
		return action(ctx, cmd, client)
	}
}

// show prints pretty, or v itself with --raw.
func show(cmd *cli.Command, v interface{}, pretty string) {
	if cmd.Bool("raw") {
		spew.Fdump(os.Stdout, v)
		return
	}
	fmt.Println(pretty)
}

func chainAction(ctx context.Context, cmd *cli.Command, client *rpc.Client) error {
	blocks, err := client.Chain(ctx)
	if err != nil {
		return err
	}
	show(cmd, blocks, renderChain(blocks))
	return nil
}

func blockAction(ctx context.Context, cmd *cli.Command, client *rpc.Client) error {
	if hash := cmd.String("hash"); hash != "" {
		block, err := client.BlockByHash(ctx, hash)
		if err != nil {
			return err
		}
		show(cmd, block, renderBlock(-1, block))
		return nil
	}

	height := int(cmd.Int("height"))
	if height < 0 {
		return errors.New("either --hash or --height is required")
	}
	block, err := client.BlockByHeight(ctx, height)
	if err != nil {
		return err
	}
	show(cmd, block, renderBlock(height, block))
	return nil
}

func statsAction(ctx context.Context, cmd *cli.Command, client *rpc.Client) error {
	stats, err := client.Stats(ctx)
	if err != nil {
		return err
	}
	show(cmd, stats, renderStats(stats))
	return nil
}

func balanceAction(ctx context.Context, cmd *cli.Command, client *rpc.Client) error {
	address := cmd.Args().First()
	if address == "" {
		return errors.New("address is required")
	}
	balance, err := client.Balance(ctx, address)
	if err != nil {
		return err
	}
	show(cmd, balance, renderBalance(address, balance))
	return nil
}

func sendAction(ctx context.Context, cmd *cli.Command, client *rpc.Client) error {
	amount, err := decimal.NewFromString(cmd.String("amount"))
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", cmd.String("amount"), err)
	}

	tx := blockchain.NewTransaction(cmd.String("from"), cmd.String("to"), amount)
	hash, err := client.SubmitTransaction(ctx, tx)
	if err != nil {
		return err
	}
	show(cmd, tx, okStyle.Render("pending ")+field("hash", hash))
	return nil
}

func mineAction(ctx context.Context, cmd *cli.Command, client *rpc.Client) error {
	block, err := client.Seal(ctx, cmd.String("miner"))
	if err != nil {
		return err
	}
	show(cmd, block, renderBlock(-1, block))
	return nil
}

func pendingAction(ctx context.Context, cmd *cli.Command, client *rpc.Client) error {
	txs, err := client.Pending(ctx)
	if err != nil {
		return err
	}
	show(cmd, txs, renderTransactions(txs))
	return nil
}

func verifyAction(ctx context.Context, cmd *cli.Command, client *rpc.Client) error {
	result, err := client.Verify(ctx)
	if err != nil {
		return err
	}
	show(cmd, result, renderVerify(result))
	return nil
}

func addressAction(ctx context.Context, cmd *cli.Command, client *rpc.Client) error {
	label := cmd.Args().First()
	if label == "" {
		return errors.New("label is required")
	}
	address, err := client.Address(ctx, label)
	if err != nil {
		return err
	}
	show(cmd, address, field("address", address))
	return nil
}
