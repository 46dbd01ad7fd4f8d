// Package snapshot keeps the last value of positional records in a Pebble store.
//
// Records are stored under a string key, like the symbol of a ticker,
// in their positional array form.
package snapshot

import (
	"github.com/chaisql/posarray"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"go.uber.org/zap"
)

const (
	separator    byte = 0x1F
	recordPrefix      = 'r'
)

// ErrKeyNotFound is returned when the targeted key doesn't exist.
var ErrKeyNotFound = errors.New("key not found")

// Options is used to configure a Store upon creation.
type Options struct {
	// Config encodes and decodes the records. Defaults to posarray.DefaultConfig.
	Config *posarray.Config
	// Pebble options passed to pebble.Open.
	Pebble *pebble.Options
}

// Store is a last-value store of positional records.
type Store struct {
	DB  *pebble.DB
	cfg *posarray.Config
}

// Open creates or opens a store at path. If path is ":memory:",
// the store is kept in memory and lost on Close.
func Open(path string, opts *Options) (*Store, error) {
	var popts pebble.Options
	if opts != nil && opts.Pebble != nil {
		popts = *opts.Pebble
	}

	cfg := posarray.DefaultConfig
	if opts != nil && opts.Config != nil {
		cfg = opts.Config
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if popts.Logger == nil {
		popts.Logger = logger.Sugar()
	}

	if path == ":memory:" {
		popts.FS = vfs.NewMem()
		path = ""
	}

	db, err := pebble.Open(path, &popts)
	if err != nil {
		return nil, errors.Wrapf(err, "open snapshot store %q", path)
	}

	logger.Debug("snapshot store opened", zap.String("path", path))

	return &Store{
		DB:  db,
		cfg: cfg,
	}, nil
}

// buildKey returns the key of a record, in the form:
// recordPrefix + <sep> + key.
func buildKey(k string) ([]byte, error) {
	if k == "" {
		return nil, errors.New("cannot store empty key")
	}

	key := make([]byte, 0, len(k)+2)
	key = append(key, recordPrefix, separator)
	key = append(key, k...)
	return key, nil
}

// Put encodes v and stores it under k. If k already exists, it overrides it.
func (s *Store) Put(k string, v any) error {
	key, err := buildKey(k)
	if err != nil {
		return err
	}

	data, err := s.cfg.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %q", k)
	}

	return s.DB.Set(key, data, pebble.Sync)
}

// PutBatch encodes and stores every item atomically.
// Nothing is written if one of the items cannot be encoded.
func (s *Store) PutBatch(items map[string]any) error {
	b := s.DB.NewBatch()
	defer b.Close()

	for k, v := range items {
		key, err := buildKey(k)
		if err != nil {
			return err
		}

		data, err := s.cfg.Marshal(v)
		if err != nil {
			return errors.Wrapf(err, "encode %q", k)
		}

		if err := b.Set(key, data, nil); err != nil {
			return err
		}
	}

	return b.Commit(pebble.Sync)
}

// GetRaw returns the positional array stored under k. If not found, returns ErrKeyNotFound.
func (s *Store) GetRaw(k string) ([]byte, error) {
	key, err := buildKey(k)
	if err != nil {
		return nil, err
	}

	return get(s.DB, key)
}

// Get decodes the record stored under k into dst. If not found, returns ErrKeyNotFound.
func (s *Store) Get(k string, dst any) error {
	data, err := s.GetRaw(k)
	if err != nil {
		return err
	}

	if err := s.cfg.Unmarshal(data, dst); err != nil {
		return errors.Wrapf(err, "decode %q", k)
	}

	return nil
}

// Delete removes the record stored under k. If not found, returns ErrKeyNotFound.
func (s *Store) Delete(k string) error {
	key, err := buildKey(k)
	if err != nil {
		return err
	}

	if _, err := get(s.DB, key); err != nil {
		return err
	}

	return s.DB.Delete(key, pebble.Sync)
}

// Close the underlying Pebble database.
func (s *Store) Close() error {
	return s.DB.Close()
}

func get(r pebble.Reader, k []byte) ([]byte, error) {
	value, closer, err := r.Get(k)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, errors.WithStack(ErrKeyNotFound)
		}

		return nil, err
	}

	cp := make([]byte, len(value))
	copy(cp, value)

	err = closer.Close()
	if err != nil {
		return nil, err
	}

	return cp, nil
}
