package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/shopspring/decimal"
	"github.com/shu8h0-null/minledger/core/blockchain"
)

const (
	Namespace = "LedgerRPC"
	Path      = "/rpc/v0"
)

var ErrBlockNotFound = errors.New("block not found")

// VerifyResult is the outcome of a chain verification. Index is set only
// when a block failed.
type VerifyResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
	Index *int   `json:"index,omitempty"`
}

// Stats summarises the ledger and its most recent seal.
type Stats struct {
	Height       int                  `json:"height"`
	TipHash      string               `json:"tipHash"`
	Difficulty   int                  `json:"difficulty"`
	MiningReward decimal.Decimal      `json:"miningReward"`
	Pending      int                  `json:"pending"`
	LastSeal     blockchain.SealStats `json:"lastSeal"`
}

type RPCHandler struct {
	rpcServer       server
	strictAddresses bool
}

func NewRPCHandler(s server, strictAddresses bool) *RPCHandler {
	return &RPCHandler{
		rpcServer:       s,
		strictAddresses: strictAddresses,
	}
}

func (h *RPCHandler) Chain(ctx context.Context) ([]*blockchain.Block, error) {
	return h.rpcServer.Chain(), nil
}

func (h *RPCHandler) BlockByHash(ctx context.Context, hash string) (*blockchain.Block, error) {
	block, exists := h.rpcServer.BlockByHash(hash)
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, hash)
	}
	return block, nil
}

func (h *RPCHandler) BlockByHeight(ctx context.Context, height int) (*blockchain.Block, error) {
	block, exists := h.rpcServer.BlockByHeight(height)
	if !exists {
		return nil, fmt.Errorf("%w: height %d", ErrBlockNotFound, height)
	}
	return block, nil
}

func (h *RPCHandler) Stats(ctx context.Context) (*Stats, error) {
	return &Stats{
		Height:       h.rpcServer.Height(),
		TipHash:      h.rpcServer.Tip().Hash,
		Difficulty:   h.rpcServer.Difficulty(),
		MiningReward: h.rpcServer.MiningReward(),
		Pending:      len(h.rpcServer.Pending()),
		LastSeal:     h.rpcServer.LastSeal(),
	}, nil
}

func (h *RPCHandler) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	if err := h.checkAddresses(address); err != nil {
		return decimal.Zero, err
	}
	return h.rpcServer.BalanceOf(address), nil
}

// SubmitTransaction admits tx and returns its hash. Rewards are minted only
// by sealing, so a transaction without a sender is refused here.
func (h *RPCHandler) SubmitTransaction(ctx context.Context, tx blockchain.Transaction) (string, error) {
	if tx.From == "" {
		return "", fmt.Errorf("%w: sender is required", blockchain.ErrMissingAddress)
	}
	if err := h.checkAddresses(tx.From, tx.To); err != nil {
		return "", err
	}
	if err := h.rpcServer.AdmitTransaction(tx); err != nil {
		return "", err
	}
	return tx.Hash(), nil
}

// Seal runs proof-of-work for the pending transactions and returns the new
// block. The call returns only when a nonce is found.
func (h *RPCHandler) Seal(ctx context.Context, minerAddress string) (*blockchain.Block, error) {
	if err := h.checkAddresses(minerAddress); err != nil {
		return nil, err
	}
	return h.rpcServer.SealNextBlock(minerAddress)
}

func (h *RPCHandler) Pending(ctx context.Context) ([]blockchain.Transaction, error) {
	return h.rpcServer.Pending(), nil
}

func (h *RPCHandler) Verify(ctx context.Context) (*VerifyResult, error) {
	err := h.rpcServer.Verify()
	if err == nil {
		return &VerifyResult{Valid: true}, nil
	}

	result := &VerifyResult{Error: err.Error()}
	var integrityErr *blockchain.IntegrityError
	if errors.As(err, &integrityErr) {
		result.Index = &integrityErr.Index
	}
	return result, nil
}

func (h *RPCHandler) Address(ctx context.Context, label string) (string, error) {
	return blockchain.AddressFromLabel(label)
}

func (h *RPCHandler) checkAddresses(addresses ...string) error {
	if !h.strictAddresses {
		return nil
	}
	return blockchain.CheckAddresses(addresses...)
}

// NewServer registers handler under Namespace. Mount the result at Path.
func NewServer(handler *RPCHandler) http.Handler {
	rpcServer := jsonrpc.NewServer()
	rpcServer.Register(Namespace, handler)
	return rpcServer
}

// Client mirrors RPCHandler for jsonrpc.NewClient.
type Client struct {
	Chain             func(ctx context.Context) ([]*blockchain.Block, error)
	BlockByHash       func(ctx context.Context, hash string) (*blockchain.Block, error)
	BlockByHeight     func(ctx context.Context, height int) (*blockchain.Block, error)
	Stats             func(ctx context.Context) (*Stats, error)
	Balance           func(ctx context.Context, address string) (decimal.Decimal, error)
	SubmitTransaction func(ctx context.Context, tx blockchain.Transaction) (string, error)
	Seal              func(ctx context.Context, minerAddress string) (*blockchain.Block, error)
	Pending           func(ctx context.Context) ([]blockchain.Transaction, error)
	Verify            func(ctx context.Context) (*VerifyResult, error)
	Address           func(ctx context.Context, label string) (string, error)
}

// NewClient connects to a node's RPC endpoint, e.g. http://localhost:4000/rpc/v0.
func NewClient(ctx context.Context, addr string) (*Client, jsonrpc.ClientCloser, error) {
	var client Client
	closer, err := jsonrpc.NewClient(ctx, addr, Namespace, &client, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting to rpc server %s: %w", addr, err)
	}
	return &client, closer, nil
}
