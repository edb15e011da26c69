package blockchain

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/mr-tron/base58/base58"
	"golang.org/x/crypto/ripemd160"
)

const (
	pubKeyHashLen = ripemd160.Size
	checksumLen   = 4
)

// AddressFromLabel derives a stable base58check address from a human label,
// so "alice" always maps to the same account.
func AddressFromLabel(label string) (string, error) {
	if label == "" {
		return "", errors.New("label cannot be empty")
	}
	return PubKeyHashToAddress(LabelToPubKeyHash(label)), nil
}

// LabelToPubKeyHash hashes label with sha256 and the result again with
// ripemd160.
func LabelToPubKeyHash(label string) []byte {
	sha256Hash := sha256.Sum256([]byte(label))
	ripemd160Hasher := ripemd160.New()
	ripemd160Hasher.Write(sha256Hash[:])
	return ripemd160Hasher.Sum(nil)
}

// PubKeyHashToAddress appends a double-sha256 checksum and base58 encodes.
func PubKeyHashToAddress(pubKeyHash []byte) string {
	addressBytes := make([]byte, 0, len(pubKeyHash)+checksumLen)
	addressBytes = append(addressBytes, pubKeyHash...)
	addressBytes = append(addressBytes, checksum(pubKeyHash)...)
	return base58.Encode(addressBytes)
}

// AddressToPubKeyHash decodes a base58check address and verifies its checksum.
func AddressToPubKeyHash(address string) ([]byte, error) {
	addressBytes, err := base58.Decode(address)
	if err != nil {
		return nil, fmt.Errorf("failed to decode address: %w", err)
	}
	if len(addressBytes) != pubKeyHashLen+checksumLen {
		return nil, fmt.Errorf("address decodes to %d bytes, want %d", len(addressBytes), pubKeyHashLen+checksumLen)
	}

	pubKeyHash := addressBytes[:pubKeyHashLen]
	if !bytes.Equal(addressBytes[pubKeyHashLen:], checksum(pubKeyHash)) {
		return nil, errors.New("address checksum mismatched")
	}
	return pubKeyHash, nil
}

func CheckAddress(address string) error {
	_, err := AddressToPubKeyHash(address)
	return err
}

// CheckAddresses is CheckAddress over several addresses, failing on the
// first bad one.
func CheckAddresses(addresses ...string) error {
	for _, address := range addresses {
		if err := CheckAddress(address); err != nil {
			return fmt.Errorf("%w %s: %v", ErrInvalidAddress, address, err)
		}
	}
	return nil
}

func checksum(payload []byte) []byte {
	firstHash := sha256.Sum256(payload)
	secondHash := sha256.Sum256(firstHash[:])
	return secondHash[:checksumLen]
}
