package blockchain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/shu8h0-null/minledger/core/logger"
)

var log = logger.NewLogger()

// GenesisPreviousHash stands in for the missing predecessor of block 0.
const GenesisPreviousHash = "0"

// Block is a sealed unit of the chain. Blocks are only produced by
// createGenesisBlock and Candidate.Seal; the ledger never hands out its own
// instances, so a Block obtained from it can be modified without effect.
type Block struct {
	Timestamp    int64         `json:"timestamp"`
	Transactions []Transaction `json:"transactions"`
	PreviousHash string        `json:"previousHash"`
	Hash         string        `json:"hash"`
	Nonce        uint64        `json:"nonce"`
}

// ComputeHash recomputes the content digest from the block's fields,
// ignoring the stored Hash.
func (b *Block) ComputeHash() string {
	return calculateHash(blockPayload(b.PreviousHash, b.Timestamp, b.Transactions), b.Nonce)
}

func (b *Block) Clone() *Block {
	c := *b
	c.Transactions = make([]Transaction, len(b.Transactions))
	copy(c.Transactions, b.Transactions)
	return &c
}

// MeetsDifficulty reports whether hash starts with difficulty '0' characters.
func MeetsDifficulty(hash string, difficulty int) bool {
	if difficulty <= 0 {
		return true
	}
	return strings.HasPrefix(hash, strings.Repeat("0", difficulty))
}

// Candidate is a block that has not been sealed yet. Its content is fixed at
// construction; only Seal turns it into a Block.
type Candidate struct {
	timestamp    int64
	transactions []Transaction
	previousHash string
	payload      string
}

func NewCandidate(timestamp int64, txs []Transaction, previousHash string) *Candidate {
	transactions := make([]Transaction, len(txs))
	copy(transactions, txs)

	return &Candidate{
		timestamp:    timestamp,
		transactions: transactions,
		previousHash: previousHash,
		payload:      blockPayload(previousHash, timestamp, transactions),
	}
}

// Seal searches nonces from zero upwards until the block hash has difficulty
// leading zeros. The search has no upper bound; expect about 16^difficulty
// attempts.
func (c *Candidate) Seal(difficulty int) *Block {
	var nonce uint64
	for {
		hash := calculateHash(c.payload, nonce)
		if MeetsDifficulty(hash, difficulty) {
			txs := make([]Transaction, len(c.transactions))
			copy(txs, c.transactions)
			return &Block{
				Timestamp:    c.timestamp,
				Transactions: txs,
				PreviousHash: c.previousHash,
				Hash:         hash,
				Nonce:        nonce,
			}
		}
		nonce++
	}
}

func createGenesisBlock(timestamp int64) *Block {
	b := &Block{
		Timestamp:    timestamp,
		Transactions: []Transaction{},
		PreviousHash: GenesisPreviousHash,
	}
	b.Hash = b.ComputeHash()
	return b
}

func blockPayload(previousHash string, timestamp int64, txs []Transaction) string {
	return previousHash + strconv.FormatInt(timestamp, 10) + TransactionsToJSON(txs)
}

func calculateHash(payload string, nonce uint64) string {
	hash := sha256.Sum256([]byte(payload + strconv.FormatUint(nonce, 10)))
	return hex.EncodeToString(hash[:])
}
