package blockchain

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff"
	bolt "go.etcd.io/bbolt"
)

// Archive receives every sealed block after it joins the chain.
type Archive interface {
	Append(height int, block *Block) error
}

const (
	archiveFile   = "chain.db"
	archiveBucket = "blocks"

	archiveWriteAttempts = 3
	archiveRetryDelay    = 50 * time.Millisecond
)

// BoltArchive journals sealed blocks into a BoltDB file keyed by height. The
// journal is emptied every time it is opened: it records the current run and
// is never loaded back into a ledger.
type BoltArchive struct {
	db *bolt.DB
}

// OpenArchive opens (creating if needed) the journal in dir and resets it.
func OpenArchive(dir string) (*BoltArchive, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := bolt.Open(filepath.Join(dir, archiveFile), 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("error opening archive db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(archiveBucket)) != nil {
			if err := tx.DeleteBucket([]byte(archiveBucket)); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucket([]byte(archiveBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error resetting archive bucket: %w", err)
	}

	return &BoltArchive{db: db}, nil
}

// Append writes block under height, retrying transient failures.
func (a *BoltArchive) Append(height int, block *Block) error {
	if height < 0 {
		return fmt.Errorf("invalid block height %d", height)
	}

	data, err := serializeBlock(block)
	if err != nil {
		return err
	}

	write := func() error {
		return a.db.Update(func(tx *bolt.Tx) error {
			bucket := tx.Bucket([]byte(archiveBucket))
			if bucket == nil {
				return errors.New("archive bucket not found")
			}
			return bucket.Put(heightKey(height), data)
		})
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(archiveRetryDelay), archiveWriteAttempts-1)
	if err := backoff.Retry(write, policy); err != nil {
		return fmt.Errorf("error writing block:[%d]:[%s] to archive: %w", height, block.Hash, err)
	}
	return nil
}

// Blocks returns the journalled blocks in height order.
func (a *BoltArchive) Blocks() ([]*Block, error) {
	var blocks []*Block

	err := a.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(archiveBucket))
		if bucket == nil {
			return errors.New("archive bucket not found")
		}
		return bucket.ForEach(func(_, v []byte) error {
			block, err := deserializeBlock(v)
			if err != nil {
				return err
			}
			blocks = append(blocks, block)
			return nil
		})
	})

	return blocks, err
}

func (a *BoltArchive) Close() error {
	return a.db.Close()
}

// Big-endian keys keep bolt's byte ordering equal to height ordering.
func heightKey(height int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(height))
	return key
}

func serializeBlock(b *Block) ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(b)
	return buf.Bytes(), err
}

func deserializeBlock(data []byte) (*Block, error) {
	var b Block
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&b); err != nil {
		return nil, err
	}
	if b.Transactions == nil {
		b.Transactions = []Transaction{}
	}
	return &b, nil
}
