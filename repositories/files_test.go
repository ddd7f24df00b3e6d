package repositories

import (
	"context"
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"messenger/errors"
)

func newTestRepository(t *testing.T) *FileRepository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewFileRepository(db, logs.GetLoggerFromLevel(slog.LevelError))
}

func TestFileRepository_RoundTrip(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	payload := []byte("attachment payload")
	req.NoError(repo.StoreData(ctx, "holiday.png", payload))

	fetched, err := repo.GetFile(ctx, "holiday.png")
	req.NoError(err)
	req.Equal(payload, fetched)
}

func TestFileRepository_Overwrite(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	req.NoError(repo.StoreData(ctx, "notes.txt", []byte("v1")))
	req.NoError(repo.StoreData(ctx, "notes.txt", []byte("v2")))

	fetched, err := repo.GetFile(ctx, "notes.txt")
	req.NoError(err)
	req.Equal([]byte("v2"), fetched)
}

func TestFileRepository_GetFile_NotFound(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)

	_, err := repo.GetFile(context.Background(), "missing.bin")
	req.ErrorIs(err, errors.ErrFileNotFound)
}
