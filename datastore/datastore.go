// Package datastore is a small JSON-file key/value store with periodic
// autosave, atomic writes and rotating backups. It backs guild-level state
// that must survive restarts without dragging in a database.
package datastore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	FilePath         string
	AutoSaveInterval time.Duration
	BackupCount      int // rotated copies kept next to the file
}

func DefaultConfig(filePath string) *Config {
	return &Config{
		FilePath:         filePath,
		AutoSaveInterval: 10 * time.Second,
		BackupCount:      3,
	}
}

type DataStore struct {
	mu     sync.RWMutex
	data   map[string]any
	file   string
	config *Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	lastChecksum string
	closed       bool
}

// New opens (or creates) the store at filePath with default configuration.
func New(filePath string) (*DataStore, error) {
	return NewWithConfig(DefaultConfig(filePath))
}

func NewWithConfig(config *Config) (*DataStore, error) {
	if config == nil || config.FilePath == "" {
		return nil, fmt.Errorf("datastore: file path required")
	}

	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("datastore: create directory: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ds := &DataStore{
		data:   make(map[string]any),
		file:   config.FilePath,
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}

	if _, err := os.Stat(config.FilePath); os.IsNotExist(err) {
		if err := ds.writeFileAtomic([]byte("{}")); err != nil {
			cancel()
			return nil, fmt.Errorf("datastore: init file: %w", err)
		}
	} else if err == nil {
		if err := ds.loadFromFile(); err != nil {
			cancel()
			return nil, fmt.Errorf("datastore: load: %w", err)
		}
	} else {
		cancel()
		return nil, err
	}

	ds.wg.Add(1)
	go ds.autoSave()

	return ds, nil
}

// Add stores a key-value pair. Writes after Close are dropped.
func (ds *DataStore) Add(key string, value any) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return
	}
	ds.data[key] = value
}

// Get retrieves a value by key.
func (ds *DataStore) Get(key string) (any, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	if ds.closed {
		return nil, false
	}
	value, exists := ds.data[key]
	return value, exists
}

// Delete removes a key.
func (ds *DataStore) Delete(key string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return
	}
	delete(ds.data, key)
}

// Keys returns all stored keys, sorted.
func (ds *DataStore) Keys() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	keys := make([]string, 0, len(ds.data))
	for k := range ds.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SaveToFile forces an immediate save to disk.
func (ds *DataStore) SaveToFile() error {
	return ds.saveToFile()
}

// Close stops the autosave loop and does a final save. Safe to call twice.
func (ds *DataStore) Close() error {
	ds.mu.Lock()
	if ds.closed {
		ds.mu.Unlock()
		return nil
	}
	ds.closed = true
	ds.mu.Unlock()

	ds.cancel()
	ds.wg.Wait()
	return ds.saveToFile()
}

func (ds *DataStore) saveToFile() error {
	ds.mu.RLock()
	data, err := json.MarshalIndent(ds.data, "", "  ")
	ds.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("datastore: marshal: %w", err)
	}

	checksum := checksumOf(data)
	if checksum == ds.lastChecksum {
		return nil
	}

	if ds.config.BackupCount > 0 {
		if err := ds.createBackup(); err != nil {
			log.Warn().Err(err).Str("file", ds.file).Msg("datastore backup failed")
		}
	}

	if err := ds.writeFileAtomic(data); err != nil {
		return err
	}

	ds.lastChecksum = checksum
	return nil
}

func (ds *DataStore) loadFromFile() error {
	data, err := os.ReadFile(ds.file)
	if err != nil {
		return err
	}

	var loaded map[string]any
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	ds.data = loaded
	ds.lastChecksum = checksumOf(data)
	return nil
}

// writeFileAtomic writes through a temp file and renames it into place so a
// crash mid-write never leaves a truncated store.
func (ds *DataStore) writeFileAtomic(data []byte) error {
	tmp := ds.file + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	f, err := os.OpenFile(tmp, os.O_RDWR, 0o644)
	if err != nil {
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	f.Close()

	if err := os.Rename(tmp, ds.file); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (ds *DataStore) createBackup() error {
	if _, err := os.Stat(ds.file); os.IsNotExist(err) {
		return nil
	}

	backup := fmt.Sprintf("%s.backup.%s", ds.file, time.Now().Format("20060102_150405"))

	src, err := os.Open(ds.file)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(backup)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}

	ds.pruneBackups()
	return nil
}

func (ds *DataStore) pruneBackups() {
	matches, err := filepath.Glob(ds.file + ".backup.*")
	if err != nil || len(matches) <= ds.config.BackupCount {
		return
	}

	sort.Strings(matches) // timestamped names sort oldest first
	for _, path := range matches[:len(matches)-ds.config.BackupCount] {
		os.Remove(path)
	}
}

func (ds *DataStore) autoSave() {
	defer ds.wg.Done()

	ticker := time.NewTicker(ds.config.AutoSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ds.ctx.Done():
			return
		case <-ticker.C:
			if err := ds.saveToFile(); err != nil {
				log.Warn().Err(err).Str("file", ds.file).Msg("datastore autosave failed")
			}
		}
	}
}

func checksumOf(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
