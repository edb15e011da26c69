package config

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	DefaultHTTPAddr     = "localhost:4000"
	DefaultDifficulty   = 4
	DefaultMiningReward = 100

	// Each extra zero multiplies the expected seal time by 16; past this the
	// HTTP façade would effectively never answer a mine request.
	MaxDifficulty = 8
)

// Config holds everything a node needs at start-up. All of it is process
// lifetime; nothing is read back from disk.
type Config struct {
	HTTPAddr     string
	Difficulty   int
	MiningReward decimal.Decimal
	// ArchiveDir is where the block journal is written. Empty disables it.
	ArchiveDir string
	// StrictAddresses makes the façades reject anything that is not a
	// base58check address.
	StrictAddresses bool
}

func Default() Config {
	return Config{
		HTTPAddr:     DefaultHTTPAddr,
		Difficulty:   DefaultDifficulty,
		MiningReward: decimal.NewFromInt(DefaultMiningReward),
		ArchiveDir:   ArchiveDir(),
	}
}

func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("http address cannot be empty")
	}
	if c.Difficulty < 0 || c.Difficulty > MaxDifficulty {
		return fmt.Errorf("difficulty must be between 0 and %d, got %d", MaxDifficulty, c.Difficulty)
	}
	if !c.MiningReward.IsPositive() {
		return fmt.Errorf("mining reward must be positive, got %s", c.MiningReward)
	}
	return nil
}
