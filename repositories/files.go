package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"messenger/errors"
)

// FileRepository persists file attachments as BadgerDB blobs.
// Keys are "file:<name>" so attachments share the database with any
// other namespace without collisions.
type FileRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewFileRepository(db *badger.DB, log *slog.Logger) *FileRepository {
	return &FileRepository{db: db, log: log}
}

func fileKey(filename string) []byte {
	return []byte("file:" + filename)
}

// StoreData writes the blob, replacing any previous version of the same
// filename.
func (r *FileRepository) StoreData(_ context.Context, filename string, data []byte) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(fileKey(filename), data)
	})
	if err != nil {
		return fmt.Errorf("storing %s: %w", filename, err)
	}
	r.log.Debug("file stored", "filename", filename, "size", len(data))
	return nil
}

// GetFile reads the blob back, mapping a missing key to ErrFileNotFound
// so callers never see a storage-engine error for the expected case.
func (r *FileRepository) GetFile(_ context.Context, filename string) ([]byte, error) {
	var data []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(fileKey(filename))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, errors.ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return data, nil
}
