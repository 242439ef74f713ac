package bets

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/roulette/internal/domain"
)

const (
	alice = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	bob   = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

func backends(t *testing.T) map[string]func() Store {
	t.Helper()
	return map[string]func() Store{
		"wal": func() Store {
			s, err := NewWALStore(filepath.Join(t.TempDir(), "bets"))
			require.NoError(t, err)
			return s
		},
		"sqlite": func() Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "bets.db"))
			require.NoError(t, err)
			return s
		},
	}
}

func TestStore_AppendAssignsSequentialIDs(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			defer s.Close()
			ctx := context.Background()

			first, err := s.Append(ctx, domain.NewBetRecord(alice, 0.5, "single", 7, true))
			require.NoError(t, err)
			second, err := s.Append(ctx, domain.NewBetRecord(bob, 1, "red", 2, false))
			require.NoError(t, err)

			assert.Equal(t, uint64(1), first.ID)
			assert.Equal(t, uint64(2), second.ID)
			assert.False(t, first.Timestamp.IsZero())
			assert.True(t, first.SameBet(domain.NewBetRecord(alice, 0.5, "single", 7, true)))
		})
	}
}

func TestStore_AppendRejectsIncompleteRecords(t *testing.T) {
	tests := []struct {
		name string
		rec  domain.BetRecord
	}{
		{name: "no player", rec: domain.NewBetRecord("", 1, "red", 1, true)},
		{name: "no bet type", rec: domain.NewBetRecord(alice, 1, "", 1, true)},
	}

	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			defer s.Close()

			for _, tt := range tests {
				_, err := s.Append(context.Background(), tt.rec)
				assert.Error(t, err, tt.name)
			}

			all, err := s.After(context.Background(), 0)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestStore_RecentAndAfter(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			defer s.Close()
			ctx := context.Background()

			for i, player := range []string{alice, bob, alice, alice} {
				_, err := s.Append(ctx, domain.NewBetRecord(player, float64(i+1), "odd", i, i%2 == 1))
				require.NoError(t, err)
			}

			recent, err := s.Recent(ctx, alice, 2)
			require.NoError(t, err)
			require.Len(t, recent, 2)
			assert.Equal(t, uint64(4), recent[0].ID)
			assert.Equal(t, uint64(3), recent[1].ID)

			everyone, err := s.Recent(ctx, "", 10)
			require.NoError(t, err)
			assert.Len(t, everyone, 4)

			none, err := s.Recent(ctx, alice, 0)
			require.NoError(t, err)
			assert.Empty(t, none)

			after, err := s.After(ctx, 2)
			require.NoError(t, err)
			require.Len(t, after, 2)
			assert.Equal(t, uint64(3), after[0].ID)
			assert.Equal(t, uint64(4), after[1].ID)

			tail, err := s.After(ctx, 4)
			require.NoError(t, err)
			assert.Empty(t, tail)
		})
	}
}

func TestWALStore_KeepsHistoryAcrossRestarts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bets")
	ctx := context.Background()

	s, err := NewWALStore(dir)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	_, err = s.Append(ctx, domain.NewBetRecord(alice, 2, "black", 0, false))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewWALStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	next, err := reopened.Append(ctx, domain.NewBetRecord(alice, 1, "black", 4, true))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next.ID)

	all, err := reopened.After(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), all[0].Timestamp)
}

func TestWALStore_KeepsEverySegment(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bets")
	ctx := context.Background()
	total := segmentLimit*11 + 5

	s, err := NewWALStore(dir)
	require.NoError(t, err)

	_, err = s.Append(ctx, domain.NewBetRecord(alice, 1, "red", 3, true))
	require.NoError(t, err)
	for i := 1; i < total; i++ {
		_, err = s.Append(ctx, domain.NewBetRecord(bob, 0.1, "odd", i%37, i%2 == 1))
		require.NoError(t, err)
	}
	require.NoError(t, s.Close())

	reopened, err := NewWALStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	all, err := reopened.After(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, total)
	assert.Equal(t, uint64(1), all[0].ID)
	assert.Equal(t, uint64(total), all[total-1].ID)

	oldest, err := reopened.Recent(ctx, alice, 10)
	require.NoError(t, err)
	require.Len(t, oldest, 1)
	assert.Equal(t, uint64(1), oldest[0].ID)

	latest, err := reopened.Recent(ctx, "", 500)
	require.NoError(t, err)
	assert.Len(t, latest, 500)
}

func TestOpen_UnknownScheme(t *testing.T) {
	_, err := Open(context.Background(), "redis://localhost")
	assert.Error(t, err)

	_, err = Open(context.Background(), "no-scheme")
	assert.Error(t, err)
}

func TestMongoDatabase(t *testing.T) {
	assert.Equal(t, "casino", mongoDatabase("mongodb://localhost:27017/casino"))
	assert.Equal(t, defaultMongoDatabase, mongoDatabase("mongodb://localhost:27017"))
}
