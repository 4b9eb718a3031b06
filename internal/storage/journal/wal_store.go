// Package journal keeps an append-only log of simulated fills in a WAL.
package journal

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
	"github.com/vadiminshakov/tradecli/internal/domain"
)

const (
	DefaultDir   = "./wal/trades"
	segmentLimit = 1000
	maxSegments  = 100

	fillKeyPrefix = "fill_"
)

// Record journaled fill with its WAL index.
type Record struct {
	Index uint64
	Fill  domain.Fill
}

// WALStore persists fills in a WAL.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed trade journal.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "trades_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init trade journal WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save appends the fill to the WAL.
func (s *WALStore) Save(fill domain.Fill) error {
	if s == nil || s.wal == nil {
		return errors.New("trade journal is not initialized")
	}
	if fill.Ticker == "" {
		return errors.New("fill ticker is required")
	}

	payload, err := json.Marshal(fill)
	if err != nil {
		return errors.Wrap(err, "marshal fill")
	}

	key := fmt.Sprintf("%s%s", fillKeyPrefix, fill.Ticker)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// FillsAfter returns all fills written after the provided WAL index.
func (s *WALStore) FillsAfter(index uint64) ([]Record, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("trade journal is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]Record, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil {
			// segments beyond MaxSegments are rotated away
			continue
		}
		if !strings.HasPrefix(key, fillKeyPrefix) {
			continue
		}

		var fill domain.Fill
		if err := json.Unmarshal(payload, &fill); err != nil {
			return nil, errors.Wrap(err, "decode fill")
		}
		records = append(records, Record{Index: idx, Fill: fill})
	}

	return records, nil
}

// Last returns up to n most recent fills, oldest first.
func (s *WALStore) Last(n int) ([]domain.Fill, error) {
	current := s.CurrentIndex()
	from := uint64(0)
	if n > 0 && current > uint64(n) {
		from = current - uint64(n)
	}

	records, err := s.FillsAfter(from)
	if err != nil {
		return nil, err
	}

	fills := make([]domain.Fill, 0, len(records))
	for _, r := range records {
		fills = append(fills, r.Fill)
	}
	return fills, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("trade journal is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
