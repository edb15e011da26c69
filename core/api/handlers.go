package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shu8h0-null/minledger/core/blockchain"
)

type mineRequest struct {
	MinerAddress string `json:"minerAddress"`
}

type balanceResponse struct {
	Address string      `json:"address"`
	Balance json.Number `json:"balance"`
}

type statsResponse struct {
	Height       int                  `json:"height"`
	TipHash      string               `json:"tipHash"`
	Difficulty   int                  `json:"difficulty"`
	MiningReward json.Number          `json:"miningReward"`
	Pending      int                  `json:"pending"`
	LastSeal     blockchain.SealStats `json:"lastSeal"`
}

type validationResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
	Index *int   `json:"index,omitempty"`
}

func (s *Server) handleBlocks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Chain())
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	hash := mux.Vars(r)["hash"]
	block, exists := s.ledger.BlockByHash(hash)
	if !exists {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Block %s not found", hash))
		return
	}
	writeJSON(w, http.StatusOK, block)
}

func (s *Server) handleBlockByHeight(w http.ResponseWriter, r *http.Request) {
	height, err := strconv.Atoi(mux.Vars(r)["height"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid block height")
		return
	}
	block, exists := s.ledger.BlockByHeight(height)
	if !exists {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No block at height %d", height))
		return
	}
	writeJSON(w, http.StatusOK, block)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statsResponse{
		Height:       s.ledger.Height(),
		TipHash:      s.ledger.Tip().Hash,
		Difficulty:   s.ledger.Difficulty(),
		MiningReward: json.Number(s.ledger.MiningReward().String()),
		Pending:      len(s.ledger.Pending()),
		LastSeal:     s.ledger.LastSeal(),
	})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	if !s.checkAddresses(w, address) {
		return
	}

	balance := s.ledger.BalanceOf(address)
	writeJSON(w, http.StatusOK, balanceResponse{
		Address: address,
		Balance: json.Number(balance.String()),
	})
}

func (s *Server) handleSubmitTransaction(w http.ResponseWriter, r *http.Request) {
	var tx blockchain.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		log.Warnf("Failed to decode transaction: %v\n", err)
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if tx.From == "" || tx.To == "" || tx.Amount.IsZero() {
		writeError(w, http.StatusBadRequest, "fromAddress, toAddress and amount are required")
		return
	}
	if !s.checkAddresses(w, tx.From, tx.To) {
		return
	}

	if err := s.ledger.AdmitTransaction(tx); err != nil {
		if !isRejection(err) {
			log.Errorf("Failed to admit transaction: %v\n", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"status": "rejected",
			"error":  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"status":  "pending",
		"hash":    tx.Hash(),
		"message": "Transaction added, it will be included in the next block",
	})
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Pending())
}

// handleMine answers only once the proof-of-work search is over, which takes
// about 16^difficulty hashes and has no timeout.
func (s *Server) handleMine(w http.ResponseWriter, r *http.Request) {
	var req mineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if req.MinerAddress == "" {
		writeError(w, http.StatusBadRequest, "minerAddress is required")
		return
	}
	if !s.checkAddresses(w, req.MinerAddress) {
		return
	}

	block, err := s.ledger.SealNextBlock(req.MinerAddress)
	if err != nil {
		if isRejection(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		log.Errorf("Failed to seal block: %v\n", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, block)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	resp := validationResponse{Valid: true}

	if err := s.ledger.Verify(); err != nil {
		resp.Valid = false
		resp.Error = err.Error()
		var integrityErr *blockchain.IntegrityError
		if errors.As(err, &integrityErr) {
			resp.Index = &integrityErr.Index
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddress(w http.ResponseWriter, r *http.Request) {
	label := mux.Vars(r)["label"]
	address, err := blockchain.AddressFromLabel(label)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"label":   label,
		"address": address,
	})
}

// checkAddresses writes a 400 and returns false when strict addressing is on
// and one of addresses is not base58check.
func (s *Server) checkAddresses(w http.ResponseWriter, addresses ...string) bool {
	if !s.strictAddresses {
		return true
	}
	if err := blockchain.CheckAddresses(addresses...); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func isRejection(err error) bool {
	return errors.Is(err, blockchain.ErrInsufficientFunds) ||
		errors.Is(err, blockchain.ErrNonPositiveAmount) ||
		errors.Is(err, blockchain.ErrMissingAddress) ||
		errors.Is(err, blockchain.ErrInvalidAddress)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Failed to encode response: %v\n", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
