package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

const (
	tempFilesBucket = "tempfiles"
	metadataBucket  = "metadata"
	schemaVersion   = 1
)

var (
	// ErrRecordNotFound is returned when a record cannot be found
	ErrRecordNotFound = errors.New("temp file record not found")
	ErrEmptyID        = errors.New("record ID cannot be empty")
)

// BboltRepository implements Repository on a bbolt file.
type BboltRepository struct {
	db *bbolt.DB
}

// NewBboltRepository opens (or creates) the ledger at dbPath.
func NewBboltRepository(dbPath string) (*BboltRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := &bbolt.Options{
		Timeout: 1 * time.Second,
	}

	db, err := bbolt.Open(dbPath, 0o600, options)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &BboltRepository{
		db: db,
	}

	if err := repo.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// initialize sets up buckets and schema
func (r *BboltRepository) initialize() error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(tempFilesBucket))
		if err != nil {
			return fmt.Errorf("failed to create tempfiles bucket: %w", err)
		}

		metadataBucket, err := tx.CreateBucketIfNotExists([]byte(metadataBucket))
		if err != nil {
			return fmt.Errorf("failed to create metadata bucket: %w", err)
		}

		versionBytes := []byte(fmt.Sprintf("%d", schemaVersion))
		err = metadataBucket.Put([]byte("schema_version"), versionBytes)
		if err != nil {
			return fmt.Errorf("failed to store schema version: %w", err)
		}

		return nil
	})
}

func (r *BboltRepository) Save(record *Record) error {
	if record == nil {
		return errors.New("cannot save nil record")
	}

	if record.ID == uuid.Nil {
		return ErrEmptyID
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(tempFilesBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", tempFilesBucket)
		}

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}

		err = bucket.Put([]byte(record.ID.String()), data)
		if err != nil {
			return fmt.Errorf("failed to save record: %w", err)
		}

		return nil
	})
}

func (r *BboltRepository) Find(id uuid.UUID) (*Record, error) {
	if id == uuid.Nil {
		return nil, ErrEmptyID
	}

	var data []byte
	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(tempFilesBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", tempFilesBucket)
		}

		// bbolt memory is only valid inside the transaction
		if v := bucket.Get([]byte(id.String())); v != nil {
			data = append([]byte(nil), v...)
		}
		if data == nil {
			return ErrRecordNotFound
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	record := &Record{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	return record, nil
}

func (r *BboltRepository) FindAll() ([]*Record, error) {
	var records []*Record

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(tempFilesBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", tempFilesBucket)
		}

		return bucket.ForEach(func(k, v []byte) error {
			record := &Record{}

			if err := json.Unmarshal(v, record); err != nil {
				return fmt.Errorf("failed to unmarshal record: %w", err)
			}

			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *BboltRepository) Delete(id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrEmptyID
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(tempFilesBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", tempFilesBucket)
		}

		if bucket.Get([]byte(id.String())) == nil {
			return ErrRecordNotFound
		}

		return bucket.Delete([]byte(id.String()))
	})
}

// Close closes the database
func (r *BboltRepository) Close() error {
	return r.db.Close()
}
