package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mama165/sdk-go/logs"

	"messenger/contract"
	"messenger/errors"
)

// fakeStorage is an in-memory stand-in for the external file service.
type fakeStorage struct {
	mu    sync.Mutex
	files map[string][]byte
	fail  bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: make(map[string][]byte)}
}

func (f *fakeStorage) StoreData(_ context.Context, filename string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("storage down")
	}
	f.files[filename] = data
	return nil
}

func (f *fakeStorage) GetFile(_ context.Context, filename string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, fmt.Errorf("storage down")
	}
	data, ok := f.files[filename]
	if !ok {
		return nil, errors.ErrFileNotFound
	}
	return data, nil
}

// recordingListener captures pushed property events.
type recordingListener struct {
	mu     sync.Mutex
	events []contract.PropertyEvent
}

func (l *recordingListener) OnPropertyChanged(_ context.Context, evt contract.PropertyEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, evt)
	return nil
}

func (l *recordingListener) received() []contract.PropertyEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]contract.PropertyEvent(nil), l.events...)
}

func (l *recordingListener) forProperty(property string) []contract.PropertyEvent {
	var matching []contract.PropertyEvent
	for _, evt := range l.received() {
		if evt.Property == property {
			matching = append(matching, evt)
		}
	}
	return matching
}

func newTestAdministration(storage contract.FileStorage) *Administration {
	log := logs.GetLoggerFromLevel(slog.LevelError)
	return NewAdministration(log, storage, 100*time.Millisecond)
}
