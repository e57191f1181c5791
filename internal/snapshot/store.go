package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrSchema is returned when a stored snapshot uses another schema version.
var ErrSchema = errors.New("snapshot schema mismatch")

// Store keeps snapshots in a directory, one file per name. It is safe for
// concurrent use.
type Store struct {
	mu  sync.RWMutex
	dir string
}

// Open returns a store rooted at dir, creating the directory if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot store %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

// NameFor derives a snapshot name from a manifest path.
func NameFor(manifest string) string {
	base := filepath.Base(manifest)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (s *Store) pathFor(name string) string {
	return filepath.Join(s.dir, name+".mp")
}

// Put writes snap under name, replacing any previous version atomically.
func (s *Store) Put(name string, snap *Snapshot) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return Write(s.pathFor(name), snap)
}

// Get reads the snapshot stored under name. A missing snapshot is not an
// error.
func (s *Store) Get(name string) (*Snapshot, bool, error) {
	if s == nil {
		return nil, false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, err := Read(s.pathFor(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return snap, true, nil
}

// DropAll removes every stored snapshot.
func (s *Store) DropAll() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	var errs []error
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".mp" {
			continue
		}
		errs = append(errs, os.Remove(filepath.Join(s.dir, e.Name())))
	}
	return errors.Join(errs...)
}

// Write encodes snap to path through a temporary file, so readers never see
// a partial snapshot.
func Write(path string, snap *Snapshot) (err error) {
	snap.Schema = SchemaVersion

	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(snap); err != nil {
		return fmt.Errorf("%s: encode: %w", path, err)
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Read decodes the snapshot at path.
func Read(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var snap Snapshot
	if err := msgpack.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", path, err)
	}
	if snap.Schema != SchemaVersion {
		return nil, fmt.Errorf("%s: %w: found %d, want %d", path, ErrSchema, snap.Schema, SchemaVersion)
	}
	return &snap, nil
}
