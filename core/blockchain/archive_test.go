package blockchain

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltArchiveJournalsChain(t *testing.T) {
	archive, err := OpenArchive(t.TempDir())
	require.NoError(t, err)
	defer archive.Close()

	l := newTestLedger(t, WithArchive(archive))
	_, err = l.SealNextBlock("A")
	require.NoError(t, err)
	require.NoError(t, l.AdmitTransaction(NewTransaction("A", "B", decimal.RequireFromString("12.5"))))
	_, err = l.SealNextBlock("M")
	require.NoError(t, err)

	blocks, err := archive.Blocks()
	require.NoError(t, err)

	chain := l.Chain()
	require.Len(t, blocks, len(chain))
	for i := range chain {
		assert.Equal(t, chain[i].Hash, blocks[i].Hash, "block %d:\n%s", i, spew.Sdump(blocks[i]))
		assert.Equal(t, chain[i].Hash, blocks[i].ComputeHash(), "archived content must hash the same")
		assert.Equal(t, chain[i].PreviousHash, blocks[i].PreviousHash)
		assert.Equal(t, chain[i].Nonce, blocks[i].Nonce)
	}
	assert.NotNil(t, blocks[0].Transactions)
	assert.Equal(t, "12.5", blocks[2].Transactions[0].Amount.String())
}

func TestBoltArchiveResetsOnOpen(t *testing.T) {
	dir := t.TempDir()

	archive, err := OpenArchive(dir)
	require.NoError(t, err)
	require.NoError(t, archive.Append(0, createGenesisBlock(1)))
	blocks, err := archive.Blocks()
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	require.NoError(t, archive.Close())

	reopened, err := OpenArchive(dir)
	require.NoError(t, err)
	defer reopened.Close()

	blocks, err = reopened.Blocks()
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestBoltArchiveOrdersByHeight(t *testing.T) {
	archive, err := OpenArchive(t.TempDir())
	require.NoError(t, err)
	defer archive.Close()

	// 256 sorts before 2 as a decimal string but not as a big-endian key
	for _, height := range []int{256, 2, 1} {
		b := createGenesisBlock(int64(height))
		require.NoError(t, archive.Append(height, b))
	}

	blocks, err := archive.Blocks()
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.Equal(t, int64(1), blocks[0].Timestamp)
	assert.Equal(t, int64(2), blocks[1].Timestamp)
	assert.Equal(t, int64(256), blocks[2].Timestamp)
}

func TestBoltArchiveRejectsNegativeHeight(t *testing.T) {
	archive, err := OpenArchive(t.TempDir())
	require.NoError(t, err)
	defer archive.Close()

	assert.Error(t, archive.Append(-1, createGenesisBlock(1)))
}

func TestBoltArchiveAppendAfterCloseFails(t *testing.T) {
	archive, err := OpenArchive(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, archive.Close())

	err = archive.Append(0, createGenesisBlock(1))
	assert.Error(t, err)
}
