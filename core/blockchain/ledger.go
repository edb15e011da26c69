package blockchain

import (
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	DefaultDifficulty = 4
	// A sha256 hex digest has 64 characters; more zeros can never match.
	MaxDifficulty = sha256HexLen

	sha256HexLen = 64
)

var DefaultMiningReward = decimal.NewFromInt(100)

// Ledger owns the chain and the pending transactions. Mutators
// (AdmitTransaction, SealNextBlock) are serialized; queries may run
// concurrently with each other but wait for a running seal to finish.
type Ledger struct {
	chain      []*Block
	blockIndex map[string]int
	mempool    *Mempool
	miner      *Miner
	reward     decimal.Decimal
	difficulty int
	archive    Archive
	events     *EventFeed[BlockSealedEvent]
	now        func() time.Time
	mu         sync.RWMutex
}

type Option func(*Ledger)

func WithDifficulty(difficulty int) Option {
	return func(l *Ledger) {
		l.difficulty = difficulty
	}
}

func WithMiningReward(reward decimal.Decimal) Option {
	return func(l *Ledger) {
		l.reward = reward
	}
}

// WithArchive journals every sealed block into a.
func WithArchive(a Archive) Option {
	return func(l *Ledger) {
		l.archive = a
	}
}

// WithClock replaces time.Now for block timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// NewLedger creates a ledger holding only the genesis block.
func NewLedger(opts ...Option) (*Ledger, error) {
	l := &Ledger{
		blockIndex: make(map[string]int),
		mempool:    NewMempool(),
		reward:     DefaultMiningReward,
		difficulty: DefaultDifficulty,
		events:     NewEventFeed[BlockSealedEvent](),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.difficulty < 0 || l.difficulty > MaxDifficulty {
		return nil, fmt.Errorf("difficulty must be between 0 and %d, got %d", MaxDifficulty, l.difficulty)
	}
	miner, err := NewMiner(l.reward)
	if err != nil {
		return nil, err
	}
	l.miner = miner
	if l.now == nil {
		return nil, errors.New("clock cannot be nil")
	}

	genesis := createGenesisBlock(l.now().UnixMilli())
	l.chain = []*Block{genesis}
	l.blockIndex[genesis.Hash] = 0
	l.journal(0, genesis)

	log.Infof("Genesis block created: %s\n", genesis.Hash)
	return l, nil
}

// AdmitTransaction validates tx and buffers it for the next block. A rejected
// transaction leaves the ledger untouched. Reward transactions skip the
// balance check.
func (l *Ledger) AdmitTransaction(tx Transaction) error {
	if tx.To == "" {
		return fmt.Errorf("%w: recipient is required", ErrMissingAddress)
	}
	if err := checkEncoding(tx.From, tx.To); err != nil {
		return err
	}
	if !tx.Amount.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrNonPositiveAmount, tx.Amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !tx.IsReward() {
		balance := l.balanceOf(tx.From)
		if balance.LessThan(tx.Amount) {
			log.Warnf("Transaction rejected: %s has %s, needs %s\n", tx.From, balance, tx.Amount)
			return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientFunds, tx.From, balance, tx.Amount)
		}
	}

	l.mempool.AddTx(tx)
	return nil
}

// SealNextBlock bundles the pending transactions and a reward for
// rewardRecipient into a block, runs proof-of-work on it and appends it. The
// call holds the ledger for the whole search and cannot be cancelled.
func (l *Ledger) SealNextBlock(rewardRecipient string) (*Block, error) {
	if rewardRecipient == "" {
		return nil, fmt.Errorf("%w: reward recipient is required", ErrMissingAddress)
	}
	if err := checkEncoding(rewardRecipient); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	txs := append(l.mempool.Transactions(), l.miner.RewardTransaction(rewardRecipient))
	tip := l.chain[len(l.chain)-1]
	height := len(l.chain)

	candidate := NewCandidate(l.now().UnixMilli(), txs, tip.Hash)
	block := l.miner.MineBlock(height, candidate, l.difficulty)

	l.chain = append(l.chain, block)
	l.blockIndex[block.Hash] = height
	l.mempool.Clear()

	l.journal(height, block)
	l.events.Send(BlockSealedEvent{
		Height:       height,
		Hash:         block.Hash,
		Transactions: len(block.Transactions),
	})

	return block.Clone(), nil
}

// BalanceOf replays every transaction on the chain. Pending transactions do
// not count.
func (l *Ledger) BalanceOf(address string) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balanceOf(address)
}

func (l *Ledger) balanceOf(address string) decimal.Decimal {
	balance := decimal.Zero
	for _, block := range l.chain {
		for _, tx := range block.Transactions {
			if !tx.IsReward() && tx.From == address {
				balance = balance.Sub(tx.Amount)
			}
			if tx.To == address {
				balance = balance.Add(tx.Amount)
			}
		}
	}
	return balance
}

// VerifyChain reports whether every block after genesis matches its content
// hash, its seal and its predecessor.
func (l *Ledger) VerifyChain() bool {
	return l.Verify() == nil
}

// Verify is VerifyChain with the reason: it returns an *IntegrityError for the
// first block that fails. Genesis has no predecessor and is not checked.
func (l *Ledger) Verify() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := 1; i < len(l.chain); i++ {
		current, previous := l.chain[i], l.chain[i-1]

		if current.Hash != current.ComputeHash() {
			return &IntegrityError{Index: i, Reason: "stored hash does not match block content"}
		}
		if current.PreviousHash != previous.Hash {
			return &IntegrityError{Index: i, Reason: "previous hash does not match preceding block"}
		}
		if !MeetsDifficulty(current.Hash, l.difficulty) {
			return &IntegrityError{Index: i, Reason: fmt.Sprintf("hash does not meet difficulty %d", l.difficulty)}
		}
	}
	return nil
}

// Chain returns a copy of every block, genesis first.
func (l *Ledger) Chain() []*Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	blocks := make([]*Block, len(l.chain))
	for i, b := range l.chain {
		blocks[i] = b.Clone()
	}
	return blocks
}

func (l *Ledger) Tip() *Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chain[len(l.chain)-1].Clone()
}

// Height is the index of the chain tip; a genesis-only ledger has height 0.
func (l *Ledger) Height() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.chain) - 1
}

func (l *Ledger) BlockByHash(hash string) (*Block, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	height, exists := l.blockIndex[hash]
	if !exists {
		return nil, false
	}
	return l.chain[height].Clone(), true
}

func (l *Ledger) BlockByHeight(height int) (*Block, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if height < 0 || height >= len(l.chain) {
		return nil, false
	}
	return l.chain[height].Clone(), true
}

func (l *Ledger) Pending() []Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.mempool.Transactions()
}

func (l *Ledger) Difficulty() int {
	return l.difficulty
}

func (l *Ledger) MiningReward() decimal.Decimal {
	return l.miner.Reward()
}

func (l *Ledger) LastSeal() SealStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.miner.LastSeal()
}

// Events publishes a BlockSealedEvent for every appended block.
func (l *Ledger) Events() *EventFeed[BlockSealedEvent] {
	return l.events
}

// DetachArchive stops journalling and returns the archive, or nil if there
// was none. It waits for a running seal, so the caller can close the archive
// knowing every appended block has been written to it.
func (l *Ledger) DetachArchive() Archive {
	l.mu.Lock()
	defer l.mu.Unlock()

	archive := l.archive
	l.archive = nil
	return archive
}

// checkEncoding rejects addresses that are not valid UTF-8. The block hash
// covers the JSON form of each address, and encoding/json replaces invalid
// bytes with U+FFFD, so two such addresses would hash alike while still
// being different accounts.
func checkEncoding(addresses ...string) error {
	for _, address := range addresses {
		if !utf8.ValidString(address) {
			return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidAddress, address)
		}
	}
	return nil
}

// journal hands block to the archive. The in-memory chain is authoritative,
// so a failed write is logged and otherwise ignored.
func (l *Ledger) journal(height int, block *Block) {
	if l.archive == nil {
		return
	}
	if err := l.archive.Append(height, block); err != nil {
		log.Errorf("Failed to archive block:[%d]: %v\n", height, err)
	}
}
