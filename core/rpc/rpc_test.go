package rpc

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/shu8h0-null/minledger/core/blockchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, strict bool) (*Client, *blockchain.Ledger) {
	t.Helper()

	ledger, err := blockchain.NewLedger(blockchain.WithDifficulty(1))
	require.NoError(t, err)
	srv := httptest.NewServer(NewServer(NewRPCHandler(ledger, strict)))
	t.Cleanup(srv.Close)

	client, closer, err := NewClient(context.Background(), srv.URL)
	require.NoError(t, err)
	t.Cleanup(closer)
	return client, ledger
}

func TestRPCRoundTrip(t *testing.T) {
	client, ledger := newTestClient(t, false)
	ctx := context.Background()

	chain, err := client.Chain(ctx)
	require.NoError(t, err)
	require.Len(t, chain, 1)
	assert.Equal(t, ledger.Tip().Hash, chain[0].Hash)

	block, err := client.Seal(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, block.Hash, block.ComputeHash())

	hash, err := client.SubmitTransaction(ctx, blockchain.NewTransaction("A", "B", decimal.NewFromInt(25)))
	require.NoError(t, err)
	assert.Equal(t, blockchain.NewTransaction("A", "B", decimal.NewFromInt(25)).Hash(), hash)

	pending, err := client.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "B", pending[0].To)

	_, err = client.Seal(ctx, "M")
	require.NoError(t, err)

	balance, err := client.Balance(ctx, "B")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(25)), "got %s", balance)

	found, err := client.BlockByHash(ctx, block.Hash)
	require.NoError(t, err)
	assert.Equal(t, block.Hash, found.Hash)

	result, err := client.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Nil(t, result.Index)
}

func TestRPCErrors(t *testing.T) {
	client, ledger := newTestClient(t, false)
	ctx := context.Background()

	_, err := client.SubmitTransaction(ctx, blockchain.NewTransaction("A", "B", decimal.NewFromInt(10)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient balance")

	_, err = client.SubmitTransaction(ctx, blockchain.NewRewardTransaction("B", decimal.NewFromInt(10)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sender is required")

	_, err = client.Seal(ctx, "")
	assert.Error(t, err)

	_, err = client.BlockByHash(ctx, "unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "block not found")

	_, err = client.Address(ctx, "")
	assert.Error(t, err)

	assert.Empty(t, ledger.Pending())
	assert.Equal(t, 0, ledger.Height())
}

func TestRPCStrictAddresses(t *testing.T) {
	client, _ := newTestClient(t, true)
	ctx := context.Background()

	_, err := client.Balance(ctx, "A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid address A")

	alice, err := client.Address(ctx, "alice")
	require.NoError(t, err)
	want, err := blockchain.AddressFromLabel("alice")
	require.NoError(t, err)
	assert.Equal(t, want, alice)

	_, err = client.Seal(ctx, alice)
	require.NoError(t, err)
	balance, err := client.Balance(ctx, alice)
	require.NoError(t, err)
	assert.True(t, balance.Equal(blockchain.DefaultMiningReward))
}

type brokenServer struct {
	*blockchain.Ledger
}

func (brokenServer) Verify() error {
	return &blockchain.IntegrityError{Index: 1, Reason: "previous hash does not match preceding block"}
}

func TestRPCVerifyReportsIndex(t *testing.T) {
	ledger, err := blockchain.NewLedger(blockchain.WithDifficulty(0))
	require.NoError(t, err)
	handler := NewRPCHandler(brokenServer{ledger}, false)

	result, err := handler.Verify(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.NotNil(t, result.Index)
	assert.Equal(t, 1, *result.Index)
	assert.Contains(t, result.Error, "previous hash")
}

func TestRPCBlockByHeightAndStats(t *testing.T) {
	client, _ := newTestClient(t, false)
	ctx := context.Background()

	sealed, err := client.Seal(ctx, "A")
	require.NoError(t, err)
	_, err = client.SubmitTransaction(ctx, blockchain.NewTransaction("A", "B", decimal.NewFromInt(1)))
	require.NoError(t, err)

	block, err := client.BlockByHeight(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, sealed.Hash, block.Hash)

	_, err = client.BlockByHeight(ctx, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "block not found")

	stats, err := client.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Height)
	assert.Equal(t, sealed.Hash, stats.TipHash)
	assert.Equal(t, 1, stats.Difficulty)
	assert.True(t, stats.MiningReward.Equal(blockchain.DefaultMiningReward))
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, sealed.Nonce+1, stats.LastSeal.Attempts)
}
