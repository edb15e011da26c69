package rpc

import (
	"github.com/shopspring/decimal"
	"github.com/shu8h0-null/minledger/core/blockchain"
)

type server interface {
	Chain() []*blockchain.Block
	BlockByHash(hash string) (*blockchain.Block, bool)
	BlockByHeight(height int) (*blockchain.Block, bool)
	Tip() *blockchain.Block
	Height() int
	BalanceOf(address string) decimal.Decimal
	AdmitTransaction(tx blockchain.Transaction) error
	SealNextBlock(rewardRecipient string) (*blockchain.Block, error)
	Pending() []blockchain.Transaction
	Verify() error
	Difficulty() int
	MiningReward() decimal.Decimal
	LastSeal() blockchain.SealStats
}
