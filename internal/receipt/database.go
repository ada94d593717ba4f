package receipt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const submissionBucketName = "submissions"

// ErrNotFound is returned when a submission lookup has no match
var ErrNotFound = errors.New("not found")

// DB defines the interface for the local submission history
type DB interface {
	// SaveSubmission stores or replaces a submission
	SaveSubmission(submission *Submission) error

	// GetSubmission retrieves a submission by ID
	GetSubmission(id string) (*Submission, error)

	// ListSubmissions returns all submissions, oldest first
	ListSubmissions() ([]*Submission, error)

	// LatestReceipt returns the most recent submission that produced a receipt
	LatestReceipt() (*Submission, error)

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB.
// Submission ids are UUIDv7 strings, so key order is creation order.
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(submissionBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveSubmission saves a submission to the database
func (b *BoltDB) SaveSubmission(submission *Submission) error {
	if submission.ID == "" {
		return errors.New("submission id is required")
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(submissionBucketName))
		data, err := json.Marshal(submission)
		if err != nil {
			return fmt.Errorf("marshaling submission: %w", err)
		}
		return bucket.Put([]byte(submission.ID), data)
	})
}

// GetSubmission retrieves a submission by ID
func (b *BoltDB) GetSubmission(id string) (*Submission, error) {
	var submission *Submission
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(submissionBucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("submission %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &submission)
	})
	if err != nil {
		return nil, err
	}
	return submission, nil
}

// ListSubmissions returns all submissions
func (b *BoltDB) ListSubmissions() ([]*Submission, error) {
	submissions := make([]*Submission, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(submissionBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var submission Submission
			if err := json.Unmarshal(v, &submission); err != nil {
				return fmt.Errorf("unmarshaling submission: %w", err)
			}
			submissions = append(submissions, &submission)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

// LatestReceipt walks the history backwards to the newest processed receipt
func (b *BoltDB) LatestReceipt() (*Submission, error) {
	var submission *Submission
	err := b.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(submissionBucketName)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var s Submission
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("unmarshaling submission: %w", err)
			}
			if s.ReceiptID != "" {
				submission = &s
				return nil
			}
		}
		return fmt.Errorf("processed receipt: %w", ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return submission, nil
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
