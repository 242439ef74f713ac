package bets

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/roulette/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type betRow struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Player    string    `gorm:"index;not null"`
	Amount    float64   `gorm:"not null"`
	BetType   string    `gorm:"not null"`
	Result    int       `gorm:"not null"`
	Win       bool      `gorm:"not null"`
	Timestamp time.Time `gorm:"not null"`
}

func (betRow) TableName() string { return "bets" }

func rowFrom(rec domain.BetRecord) betRow {
	return betRow{
		Player:    rec.Player,
		Amount:    rec.Amount,
		BetType:   rec.BetType,
		Result:    rec.Result,
		Win:       rec.Win,
		Timestamp: rec.Timestamp,
	}
}

func (r betRow) record() domain.BetRecord {
	return domain.BetRecord{
		ID:        r.ID,
		Player:    r.Player,
		Amount:    r.Amount,
		BetType:   r.BetType,
		Result:    r.Result,
		Win:       r.Win,
		Timestamp: r.Timestamp.UTC(),
	}
}

// SQLStore keeps bets in a relational table through gorm.
type SQLStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSQLiteStore opens (and creates) a SQLite database file.
func NewSQLiteStore(path string) (*SQLStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create sqlite dir")
		}
	}

	return newSQLStore(sqlite.Open(path))
}

// NewPostgresStore connects to PostgreSQL with a URL DSN.
func NewPostgresStore(dsn string) (*SQLStore, error) {
	return newSQLStore(postgres.Open(dsn))
}

func newSQLStore(dialector gorm.Dialector) (*SQLStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open bet database")
	}

	if err := db.AutoMigrate(&betRow{}); err != nil {
		return nil, errors.Wrap(err, "migrate bet database")
	}

	return &SQLStore{db: db, now: time.Now}, nil
}

func (s *SQLStore) Append(ctx context.Context, rec domain.BetRecord) (domain.BetRecord, error) {
	if err := validate(rec); err != nil {
		return domain.BetRecord{}, err
	}

	row := rowFrom(stamp(rec, 0, s.now()))
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.BetRecord{}, errors.Wrap(err, "insert bet")
	}

	return row.record(), nil
}

func (s *SQLStore) Recent(ctx context.Context, player string, limit int) ([]domain.BetRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	q := s.db.WithContext(ctx).Order("id DESC").Limit(limit)
	if player != "" {
		q = q.Where("player = ?", player)
	}

	var rows []betRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "query recent bets")
	}
	return records(rows), nil
}

func (s *SQLStore) After(ctx context.Context, id uint64) ([]domain.BetRecord, error) {
	var rows []betRow
	err := s.db.WithContext(ctx).
		Where("id > ?", id).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "query bets")
	}
	return records(rows), nil
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql handle")
	}
	return sqlDB.Close()
}

func records(rows []betRow) []domain.BetRecord {
	out := make([]domain.BetRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out
}
