package kvstore

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bornholm/go-x/slogx"
	"github.com/kirsle/configdir"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/Overland-East-Bay/membership-tracker/internal/ports/out/kvstore"
)

// AppName names the per-user configuration directory.
const AppName = "membership-tracker"

// Store is a kvstore.Store keeping one JSON file per key in a directory.
// Writes go to a temporary file that is renamed over the previous value, so a
// reader never observes a partially written value.
type Store struct {
	fs  afero.Fs
	dir string

	mu sync.RWMutex
}

// DefaultDir returns the per-user local configuration directory.
func DefaultDir() string {
	return configdir.LocalConfig(AppName)
}

// NewStore returns a Store rooted at dir on the operating system filesystem.
// An empty dir selects DefaultDir.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return NewStoreWithFs(afero.NewOsFs(), dir)
}

func NewStoreWithFs(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// Path returns the file holding key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	_ = ctx
	if !kvstore.ValidKey(key) {
		return nil, false, kvstore.ErrInvalidKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, err := afero.ReadFile(s.fs, s.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "could not read key %q", key)
	}
	return b, true, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_ = ctx
	if !kvstore.ValidKey(key) {
		return kvstore.ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(s.dir, 0o700); err != nil {
		return errors.Wrap(err, "could not create storage directory")
	}

	file, err := afero.TempFile(s.fs, s.dir, key+".*.tmp")
	if err != nil {
		return errors.WithStack(err)
	}
	tmpName := file.Name()

	committed := false
	defer func() {
		if committed {
			return
		}
		if err := s.fs.Remove(tmpName); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Error("could not remove temporary storage file", slog.String("path", tmpName), slogx.Error(errors.WithStack(err)))
		}
	}()

	if _, err := file.Write(value); err != nil {
		_ = file.Close()
		return errors.Wrapf(err, "could not write key %q", key)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return errors.WithStack(err)
	}
	if err := file.Close(); err != nil {
		return errors.WithStack(err)
	}

	if err := s.fs.Rename(tmpName, s.Path(key)); err != nil {
		return errors.Wrapf(err, "could not overwrite key %q", key)
	}
	committed = true
	return nil
}
