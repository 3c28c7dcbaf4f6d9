package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/lucentia/studyforge/core"
)

// ErrNotFound indicates no export record exists for the job id.
var ErrNotFound = errors.New("export record not found")

var keyPrefix = []byte("export:")

// Catalog is a BadgerDB-backed store of terminal export records. Unlike the
// in-memory registry, catalog entries survive process restarts and can be
// listed long after the jobs that produced them are gone.
type Catalog struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to the badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens the catalog database at the given path, creating the directory
// if it does not exist. With inMemory set, no files are written; used by
// tests.
func Open(filePath string, inMemory bool) (*Catalog, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			if err := os.MkdirAll(filePath, 0755); err != nil {
				return nil, err
			}
			info, err = os.Stat(filePath)
			if err != nil {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Catalog{
		db:     db,
		logger: slog.Default().With("component", "catalog"),
	}, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Record stores the export record for its job id, replacing any previous
// entry. Records are stored as the same JSON written to metadata.json.
func (c *Catalog) Record(ctx context.Context, record *core.ExportRecord) error {
	if record == nil || record.JobID == "" {
		return errors.New("export record requires a job id")
	}

	value, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(record.JobID), value)
	})
}

// Get retrieves the export record for a job id.
// Returns ErrNotFound if no record exists.
func (c *Catalog) Get(ctx context.Context, jobID string) (*core.ExportRecord, error) {
	var record core.ExportRecord

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(jobID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, jobID)
			}
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &record)
		})
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns all export records ordered by creation time, newest first.
func (c *Catalog) List(ctx context.Context) ([]*core.ExportRecord, error) {
	var records []*core.ExportRecord

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = keyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(keyPrefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var record core.ExportRecord
				if err := json.Unmarshal(value, &record); err != nil {
					return err
				}
				records = append(records, &record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

func key(jobID string) []byte {
	return append(append([]byte{}, keyPrefix...), jobID...)
}
