package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/shu8h0-null/minledger/core/blockchain"
	"github.com/shu8h0-null/minledger/core/rpc"
)

func field(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
}

// renderBlock draws one block. height < 0 leaves the height out.
func renderBlock(height int, b *blockchain.Block) string {
	title := "Block"
	if height >= 0 {
		title = fmt.Sprintf("Block %d", height)
	}

	lines := []string{
		titleStyle.Render(title),
		field("hash", b.Hash),
		field("previous", b.PreviousHash),
		field("timestamp", time.UnixMilli(b.Timestamp).UTC().Format(time.RFC3339)),
		field("nonce", strconv.FormatUint(b.Nonce, 10)),
		field("transactions", strconv.Itoa(len(b.Transactions))),
	}
	for _, tx := range b.Transactions {
		lines = append(lines, "  "+tx.String())
	}
	return blockStyle.Render(strings.Join(lines, "\n"))
}

func renderChain(blocks []*blockchain.Block) string {
	rendered := make([]string, len(blocks))
	for i, b := range blocks {
		rendered[i] = renderBlock(i, b)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

func renderTransactions(txs []blockchain.Transaction) string {
	if len(txs) == 0 {
		return labelStyle.UnsetWidth().Render("no pending transactions")
	}
	lines := make([]string, len(txs))
	for i, tx := range txs {
		lines[i] = fmt.Sprintf("%s %s", valueStyle.Render(tx.Hash()[:12]), tx)
	}
	return strings.Join(lines, "\n")
}

func renderBalance(address string, balance decimal.Decimal) string {
	return field("address", address) + "\n" + field("balance", balance.String())
}

func renderVerify(result *rpc.VerifyResult) string {
	if result.Valid {
		return okStyle.Render("chain is valid")
	}
	return errorStyle.Render("chain is invalid: " + result.Error)
}

func renderStats(stats *rpc.Stats) string {
	return strings.Join([]string{
		field("height", strconv.Itoa(stats.Height)),
		field("tip", stats.TipHash),
		field("difficulty", strconv.Itoa(stats.Difficulty)),
		field("reward", stats.MiningReward.String()),
		field("pending", strconv.Itoa(stats.Pending)),
		field("last seal", fmt.Sprintf("%d attempt(s) in %s", stats.LastSeal.Attempts, stats.LastSeal.Elapsed)),
	}, "\n")
}
