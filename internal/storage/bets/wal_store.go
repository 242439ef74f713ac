package bets

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
	"github.com/vadiminshakov/roulette/internal/domain"
)

const (
	segmentLimit = 100
	betKeyPrefix = "bet_"
)

// WALStore persists bets in a WAL. The WAL index is the bet ID.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
	now func() time.Time
}

// NewWALStore initializes a WAL-backed bet store in dir.
// Segments are never pruned: bet history is append-only.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		return nil, errors.New("bet WAL dir is required")
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "bets_",
		SegmentThreshold: segmentLimit,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init bet WAL")
	}

	return &WALStore{wal: wal, now: time.Now}, nil
}

// Append writes the bet at the next WAL index.
func (s *WALStore) Append(_ context.Context, rec domain.BetRecord) (domain.BetRecord, error) {
	if s == nil || s.wal == nil {
		return domain.BetRecord{}, errors.New("bet store is not initialized")
	}
	if err := validate(rec); err != nil {
		return domain.BetRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec = stamp(rec, s.wal.CurrentIndex()+1, s.now())

	payload, err := json.Marshal(rec)
	if err != nil {
		return domain.BetRecord{}, errors.Wrap(err, "marshal bet")
	}

	if err := s.wal.Write(rec.ID, betKeyPrefix+rec.Player, payload); err != nil {
		return domain.BetRecord{}, errors.Wrap(err, "write bet")
	}

	return rec, nil
}

// Recent walks the WAL backwards from the newest entry.
func (s *WALStore) Recent(_ context.Context, player string, limit int) ([]domain.BetRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("bet store is not initialized")
	}
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.BetRecord, 0, limit)
	for idx := s.wal.CurrentIndex(); idx > 0 && len(records) < limit; idx-- {
		rec, ok, err := s.read(idx)
		if err != nil {
			return nil, err
		}
		if !ok || (player != "" && rec.Player != player) {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// After returns all bets written after the provided WAL index.
func (s *WALStore) After(_ context.Context, id uint64) ([]domain.BetRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("bet store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= id {
		return nil, nil
	}

	records := make([]domain.BetRecord, 0, current-id)
	for idx := id + 1; idx <= current; idx++ {
		rec, ok, err := s.read(idx)
		if err != nil {
			return nil, err
		}
		if ok {
			records = append(records, rec)
		}
	}

	return records, nil
}

// read reports ok=false for an index the WAL does not hold.
func (s *WALStore) read(idx uint64) (domain.BetRecord, bool, error) {
	_, payload, err := s.wal.Get(idx)
	if err != nil {
		return domain.BetRecord{}, false, errors.Wrapf(err, "read bet %d", idx)
	}
	if len(payload) == 0 {
		return domain.BetRecord{}, false, nil
	}

	var rec domain.BetRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return domain.BetRecord{}, false, errors.Wrapf(err, "decode bet %d", idx)
	}
	return rec, true, nil
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("bet store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
