package database

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
	bbolterrors "go.etcd.io/bbolt/errors"

	"lina-genesis/wire"
)

const (
	defaultDbFile = "chain-cache.db"

	blocksBucket  = "blocks"
	hashesBucket  = "hashes"
	rewardsBucket = "rewards"
	epochsBucket  = "epochs"

	metaBucket = "meta"
	genesisKey = "genesis"
)

var buckets = []string{blocksBucket, hashesBucket, rewardsBucket, epochsBucket}

// Storage keeps chain data fetched from a node: blocks and block hashes by
// number, cellbase rewards by block hash, and epochs by number.  The meta
// bucket records the genesis hash of the chain the entries belong to.
type Storage struct {
	db *bbolt.DB
}

// NewStorage opens (creating if needed) the cache database in dataDir.
func NewStorage(dataDir string) (*Storage, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbFile := filepath.Join(dataDir, defaultDbFile)
	db, err := bbolt.Open(dbFile, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dbFile, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range append(buckets, metaBucket) {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Storage) Path() string {
	return s.db.Path()
}

// GenesisHash returns the genesis hash the stored entries belong to, or
// nil when none is recorded.
func (s *Storage) GenesisHash() (*wire.Hash, error) {
	var hash *wire.Hash
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(metaBucket)).Get([]byte(genesisKey))
		if data == nil {
			return nil
		}
		if len(data) != wire.HashSize {
			return errors.New("corrupt genesis entry")
		}
		hash = new(wire.Hash)
		copy(hash[:], data)
		return nil
	})
	return hash, err
}

// Reset drops every stored entry and records genesis as the chain the
// store now belongs to.
func (s *Storage) Reset(genesis wire.Hash) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range buckets {
			if err := tx.DeleteBucket([]byte(name)); err != nil && !errors.Is(err, bbolterrors.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket([]byte(name)); err != nil {
				return err
			}
		}
		return tx.Bucket([]byte(metaBucket)).Put([]byte(genesisKey), genesis[:])
	})
}

func (s *Storage) SaveBlock(block *wire.Block) error {
	return s.put(blocksBucket, numberKey(block.Number()), block)
}

// GetBlock returns nil, nil when the block is not stored.
func (s *Storage) GetBlock(number uint64) (*wire.Block, error) {
	var block wire.Block
	found, err := s.get(blocksBucket, numberKey(number), &block)
	if !found || err != nil {
		return nil, err
	}
	return &block, nil
}

func (s *Storage) SaveBlockHash(number uint64, hash wire.Hash) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(hashesBucket)).Put(numberKey(number), hash[:])
	})
}

// GetBlockHash returns nil, nil when the hash is not stored.
func (s *Storage) GetBlockHash(number uint64) (*wire.Hash, error) {
	var hash *wire.Hash
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(hashesBucket)).Get(numberKey(number))
		if data == nil {
			return nil
		}
		if len(data) != wire.HashSize {
			return fmt.Errorf("corrupt hash entry for block %d", number)
		}
		hash = new(wire.Hash)
		copy(hash[:], data)
		return nil
	})
	return hash, err
}

func (s *Storage) SaveReward(hash wire.Hash, reward *wire.BlockReward) error {
	return s.put(rewardsBucket, hash[:], reward)
}

// GetReward returns nil, nil when the reward is not stored.
func (s *Storage) GetReward(hash wire.Hash) (*wire.BlockReward, error) {
	var reward wire.BlockReward
	found, err := s.get(rewardsBucket, hash[:], &reward)
	if !found || err != nil {
		return nil, err
	}
	return &reward, nil
}

func (s *Storage) SaveEpoch(epoch *wire.Epoch) error {
	return s.put(epochsBucket, numberKey(uint64(epoch.Number)), epoch)
}

// GetEpoch returns nil, nil when the epoch is not stored.
func (s *Storage) GetEpoch(number uint64) (*wire.Epoch, error) {
	var epoch wire.Epoch
	found, err := s.get(epochsBucket, numberKey(number), &epoch)
	if !found || err != nil {
		return nil, err
	}
	return &epoch, nil
}

// Count returns the number of entries in each bucket.
func (s *Storage) Count() (map[string]int, error) {
	counts := make(map[string]int, len(buckets))
	err := s.db.View(func(tx *bbolt.Tx) error {
		for _, name := range buckets {
			counts[name] = tx.Bucket([]byte(name)).Stats().KeyN
		}
		return nil
	})
	return counts, err
}

func (s *Storage) put(bucket string, key []byte, v interface{}) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("encode %s entry: %w", bucket, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put(key, buf.Bytes())
	})
}

func (s *Storage) get(bucket string, key []byte, v interface{}) (bool, error) {
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucket)).Get(key)
		if data == nil {
			return nil
		}
		found = true
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
			return fmt.Errorf("decode %s entry: %w", bucket, err)
		}
		return nil
	})
	return found, err
}

// numberKey encodes big endian so keys iterate in height order.
func numberKey(n uint64) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], n)
	return key[:]
}
