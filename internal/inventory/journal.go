package inventory

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const scanBucketName = "scans"

// Journal records scan outcomes for later review
type Journal interface {
	// SaveScan stores an outcome under its ID
	SaveScan(outcome *Outcome) error

	// ListScans returns outcomes scanned at or after since, oldest first
	ListScans(since time.Time) ([]*Outcome, error)

	// RecentScans returns at most limit outcomes, newest first
	RecentScans(limit int) ([]*Outcome, error)

	// Close closes the journal
	Close() error
}

// BoltJournal implements Journal using BoltDB
type BoltJournal struct {
	db *bbolt.DB
}

// NewBoltJournal opens or creates the journal database at path
func NewBoltJournal(path string) (*BoltJournal, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(scanBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltJournal{db: db}, nil
}

// SaveScan stores an outcome. IDs are time ordered, so bucket order is scan order.
func (b *BoltJournal) SaveScan(outcome *Outcome) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(scanBucketName))
		data, err := json.Marshal(outcome)
		if err != nil {
			return fmt.Errorf("marshaling scan: %w", err)
		}
		return bucket.Put([]byte(outcome.ID), data)
	})
}

// ListScans returns outcomes scanned at or after since
func (b *BoltJournal) ListScans(since time.Time) ([]*Outcome, error) {
	outcomes := make([]*Outcome, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(scanBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var outcome Outcome
			if err := json.Unmarshal(v, &outcome); err != nil {
				return fmt.Errorf("unmarshaling scan %s: %w", k, err)
			}
			if !outcome.ScannedAt.Before(since) {
				outcomes = append(outcomes, &outcome)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}

// RecentScans returns the newest outcomes first
func (b *BoltJournal) RecentScans(limit int) ([]*Outcome, error) {
	outcomes := make([]*Outcome, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(scanBucketName)).Cursor()
		for k, v := c.Last(); k != nil && (limit <= 0 || len(outcomes) < limit); k, v = c.Prev() {
			var outcome Outcome
			if err := json.Unmarshal(v, &outcome); err != nil {
				return fmt.Errorf("unmarshaling scan %s: %w", k, err)
			}
			outcomes = append(outcomes, &outcome)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}

// Close closes the database connection
func (b *BoltJournal) Close() error {
	return b.db.Close()
}
