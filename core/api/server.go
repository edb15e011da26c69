package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/shu8h0-null/minledger/core/blockchain"
	"github.com/shu8h0-null/minledger/core/logger"
)

var log = logger.NewLogger()

// Ledger is the part of *blockchain.Ledger the HTTP API needs.
type Ledger interface {
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

// Server routes the HTTP API onto a ledger.
type Server struct {
	ledger          Ledger
	router          *mux.Router
	strictAddresses bool
}

// NewServer creates the API router. With strictAddresses every address in a
// request must be a valid base58check address.
func NewServer(ledger Ledger, strictAddresses bool) *Server {
	s := &Server{
		ledger:          ledger,
		router:          mux.NewRouter(),
		strictAddresses: strictAddresses,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Chain
	s.router.HandleFunc("/blocks", s.handleBlocks).Methods(http.MethodGet)
	s.router.HandleFunc("/blocks/{hash}", s.handleBlock).Methods(http.MethodGet)
	s.router.HandleFunc("/blocks/height/{height:[0-9]+}", s.handleBlockByHeight).Methods(http.MethodGet)
	s.router.HandleFunc("/balance/{address}", s.handleBalance).Methods(http.MethodGet)
	s.router.HandleFunc("/validate", s.handleValidate).Methods(http.MethodGet)
	s.router.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	// Transactions and mining
	s.router.HandleFunc("/transactions", s.handleSubmitTransaction).Methods(http.MethodPost)
	s.router.HandleFunc("/transactions/pending", s.handlePending).Methods(http.MethodGet)
	s.router.HandleFunc("/mine", s.handleMine).Methods(http.MethodPost)

	s.router.HandleFunc("/address/{label}", s.handleAddress).Methods(http.MethodGet)

	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
}

// Router exposes the underlying router so other handlers can share the
// listener.
func (s *Server) Router() *mux.Router {
	return s.router
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
