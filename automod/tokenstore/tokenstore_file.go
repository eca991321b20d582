package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Stores a single token record as a JSON file. Only one credential set is supported at a time: the key is ignored.
type FileTokenStore struct {
	Path string
}

var _ TokenStore = (*FileTokenStore)(nil)

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{Path: path}
}

func (s *FileTokenStore) Load(ctx context.Context, key string) (string, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	var tok Token
	if err := json.Unmarshal(b, &tok); err != nil {
		// malformed records are treated as a cache miss, and overwritten on next refresh
		return "", nil
	}
	if !tok.Valid() {
		return "", nil
	}
	return tok.Token, nil
}

// Writes to a temporary file in the same directory, then renames over the old record, so readers never see a partial write.
func (s *FileTokenStore) Store(ctx context.Context, key, token string, ttl time.Duration) error {
	b, err := json.Marshal(NewToken(token, ttl))
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	f, err := os.CreateTemp(dir, ".token-*.tmp")
	if err != nil {
		return fmt.Errorf("creating token temp file: %w", err)
	}
	tmpPath := f.Name()
	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing token temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing token file: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Purge(ctx context.Context, key string) error {
	err := os.Remove(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
