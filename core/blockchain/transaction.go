package blockchain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Transaction moves Amount from one address to another. An empty From marks a
// reward issued by the ledger itself; on the wire it is a null fromAddress.
// Transactions are plain values and carry no validation of their own, the
// ledger checks them when they are admitted.
type Transaction struct {
	From   string          `json:"fromAddress"`
	To     string          `json:"toAddress"`
	Amount decimal.Decimal `json:"amount"`
}

// wireTransaction fixes the serialized field order, which the block hash
// depends on.
type wireTransaction struct {
	From   *string     `json:"fromAddress"`
	To     string      `json:"toAddress"`
	Amount json.Number `json:"amount"`
}

func NewTransaction(from, to string, amount decimal.Decimal) Transaction {
	return Transaction{
		From:   from,
		To:     to,
		Amount: amount,
	}
}

func NewRewardTransaction(to string, amount decimal.Decimal) Transaction {
	return NewTransaction("", to, amount)
}

func (tx Transaction) IsReward() bool {
	return tx.From == ""
}

func (tx Transaction) MarshalJSON() ([]byte, error) {
	w := wireTransaction{
		To:     tx.To,
		Amount: json.Number(tx.Amount.String()),
	}
	if !tx.IsReward() {
		from := tx.From
		w.From = &from
	}
	return json.Marshal(w)
}

func (tx *Transaction) UnmarshalJSON(data []byte) error {
	var w struct {
		From   *string         `json:"fromAddress"`
		To     string          `json:"toAddress"`
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	tx.From = ""
	if w.From != nil {
		tx.From = *w.From
	}
	tx.To = w.To
	tx.Amount = w.Amount
	return nil
}

// Hash returns the hex encoded sha256 of the transaction's wire form. It is
// only an identifier for logs and responses; two identical transfers share it.
func (tx Transaction) Hash() string {
	data, _ := json.Marshal(tx)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func (tx Transaction) String() string {
	from := tx.From
	if tx.IsReward() {
		from = "<reward>"
	}
	return fmt.Sprintf("%s -> %s: %s", from, tx.To, tx.Amount)
}

// TransactionsToJSON serializes txs in wire order. A nil slice encodes as an
// empty array so a block hashes the same before and after a gob round trip.
func TransactionsToJSON(txs []Transaction) string {
	if txs == nil {
		txs = []Transaction{}
	}
	data, _ := json.Marshal(txs)
	return string(data)
}
