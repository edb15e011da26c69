package blockchain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SealStats describes the most recent proof-of-work search.
type SealStats struct {
	Difficulty int           `json:"difficulty"`
	Nonce      uint64        `json:"nonce"`
	Attempts   uint64        `json:"attempts"`
	Elapsed    time.Duration `json:"elapsed"`
}

type Miner struct {
	reward decimal.Decimal
	last   SealStats
}

func NewMiner(reward decimal.Decimal) (*Miner, error) {
	if !reward.IsPositive() {
		return nil, fmt.Errorf("mining reward must be positive, got %s", reward)
	}
	return &Miner{reward: reward}, nil
}

func (m *Miner) Reward() decimal.Decimal {
	return m.reward
}

// RewardTransaction credits the mining reward to recipient.
func (m *Miner) RewardTransaction(recipient string) Transaction {
	return NewRewardTransaction(recipient, m.reward)
}

// MineBlock seals c against difficulty and records how long it took.
func (m *Miner) MineBlock(height int, c *Candidate, difficulty int) *Block {
	log.Infof("Mining for new Block:[%d] with %d transaction(s) at difficulty %d\n", height, len(c.transactions), difficulty)

	start := time.Now()
	block := c.Seal(difficulty)
	m.last = SealStats{
		Difficulty: difficulty,
		Nonce:      block.Nonce,
		Attempts:   block.Nonce + 1,
		Elapsed:    time.Since(start),
	}

	log.Infof("Block:[%d]:[%s] mined after %d attempt(s) in %s\n", height, block.Hash, m.last.Attempts, m.last.Elapsed)
	return block
}

func (m *Miner) LastSeal() SealStats {
	return m.last
}
