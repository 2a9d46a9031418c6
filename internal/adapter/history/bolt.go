// Package history persists generated answers so past analyses can be
// reviewed. Only answers are stored; embedding vectors are rebuilt per
// process and never persisted.
package history

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"cbcrag/internal/domain"
)

var bucketAnswers = []byte("answers")

// Record is one stored analysis result.
type Record struct {
	ID        uint64          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Kind      string          `json:"kind"` // "ask", "anemia", "full", ...
	Model     string          `json:"model"`
	Query     string          `json:"query"`
	Answer    string          `json:"answer"`
	Sources   []domain.Source `json:"sources"`
}

// Store is an append-only bbolt-backed answer log.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the history database at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketAnswers)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create answers bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Append stores a record. The ID and creation time are assigned here.
func (s *Store) Append(rec Record) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketAnswers)

		id, err := b.NextSequence()
		if err != nil {
			return err
		}
		rec.ID = id
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = time.Now()
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}

		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, id)
		return b.Put(key, data)
	})
}

// List returns up to limit records, newest first. limit <= 0 returns all.
func (s *Store) List(limit int) ([]Record, error) {
	var records []Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketAnswers).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(records) >= limit {
				break
			}
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				continue // skip corrupted entries
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
