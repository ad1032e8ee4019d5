// Package storage persists generated chunk grids in badger, compressed with zstd.
package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/Faultbox/blueycraft/pkg/voxel"
)

// Store errors.
var (
	ErrNotFound     = errors.New("chunk not stored")
	ErrCorruptChunk = errors.New("corrupt chunk record")
	ErrClosed       = errors.New("chunk store closed")
)

// ChunkStore saves and loads chunk grids keyed by world seed and chunk coordinate.
// It is safe for concurrent use.
type ChunkStore struct {
	db  *badger.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
	log *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// Open opens or creates a store in dir.
func Open(dir string, log *zap.Logger) (*ChunkStore, error) {
	return open(badger.DefaultOptions(dir), log)
}

// OpenInMemory opens a store that keeps everything in memory.
func OpenInMemory(log *zap.Logger) (*ChunkStore, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), log)
}

func open(opts badger.Options, log *zap.Logger) (*ChunkStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("storage")

	db, err := badger.Open(opts.WithLogger(badgerLogger{log.Sugar()}))
	if err != nil {
		return nil, fmt.Errorf("opening badger at %q: %w", opts.Dir, err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}

	log.Debug("chunk store opened", zap.String("dir", opts.Dir), zap.Bool("in_memory", opts.InMemory))
	return &ChunkStore{db: db, enc: enc, dec: dec, log: log}, nil
}

// Close flushes and closes the store. Closing twice is a no-op.
func (s *ChunkStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}

// Save writes grid under seed, replacing any previous record.
func (s *ChunkStore) Save(seed int64, grid *voxel.ChunkGrid) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	value := s.enc.EncodeAll(encodeGrid(grid), nil)
	key := chunkKey(seed, grid.Coord())

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("saving chunk %s: %w", grid.Coord(), err)
	}
	return nil
}

// Load reads the grid stored for coord. It returns ErrNotFound when absent.
func (s *ChunkStore) Load(seed int64, coord voxel.ChunkCoord) (*voxel.ChunkGrid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chunkKey(seed, coord))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, coord)
	}
	if err != nil {
		return nil, fmt.Errorf("loading chunk %s: %w", coord, err)
	}

	data, err := s.dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w: %v", coord, ErrCorruptChunk, err)
	}
	grid, err := decodeGrid(coord, data)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", coord, err)
	}
	return grid, nil
}

// Delete removes the record for coord, if any.
func (s *ChunkStore) Delete(seed int64, coord voxel.ChunkCoord) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(chunkKey(seed, coord))
	})
}

// List returns every chunk coordinate stored for seed.
func (s *ChunkStore) List(seed int64) ([]voxel.ChunkCoord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	prefix := seedPrefix(seed)
	var coords []voxel.ChunkCoord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			coord, err := parseChunkKey(key, len(prefix))
			if err != nil {
				s.log.Warn("skipping malformed key", zap.ByteString("key", key), zap.Error(err))
				continue
			}
			coords = append(coords, coord)
		}
		return nil
	})
	return coords, err
}

// badgerLogger routes badger's logging through zap.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.s.Errorf(f, v...) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.s.Warnf(f, v...) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.s.Debugf(f, v...) }
func (l badgerLogger) Debugf(f string, v ...interface{})   { l.s.Debugf(f, v...) }
