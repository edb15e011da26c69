package blockchain

// Mempool buffers admitted transactions until the next seal, in the order
// they were admitted. It is not safe on its own; the Ledger guards it.
type Mempool struct {
	transactions []Transaction
}

func NewMempool() *Mempool {
	return &Mempool{}
}

func (m *Mempool) AddTx(tx Transaction) {
	m.transactions = append(m.transactions, tx)
	log.Infof("Transaction %s added to the mempool (%s)\n", shortHash(tx.Hash()), tx)
}

// Transactions returns a copy of the pending transactions.
func (m *Mempool) Transactions() []Transaction {
	txs := make([]Transaction, len(m.transactions))
	copy(txs, m.transactions)
	return txs
}

func (m *Mempool) Clear() {
	m.transactions = nil
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
