package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/KaramelBytes/chartloom-cli/internal/chart"
)

type record struct {
	ID        string    `gorm:"primaryKey;size:36"`
	CreatedAt time.Time `gorm:"index"`
	Source    string    `gorm:"size:16"`
	Question  string
	File      string
	Spec      string
}

func (record) TableName() string { return "chart_history" }

// SQLStore keeps entries in a SQLite database through gorm.
type SQLStore struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the database at dsn and migrates the schema.
// Use ":memory:" for an ephemeral store.
func OpenSQLite(dsn string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	return NewSQLStore(db)
}

// NewSQLStore migrates the history table on db.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Save(ctx context.Context, e *Entry) error {
	prepare(e)
	spec, err := json.Marshal(e.Spec)
	if err != nil {
		return fmt.Errorf("encode spec: %w", err)
	}
	rec := record{
		ID:        e.ID.String(),
		CreatedAt: e.CreatedAt,
		Source:    e.Source,
		Question:  e.Question,
		File:      e.File,
		Spec:      string(spec),
	}
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	var rec record
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return rec.entry()
}

func (s *SQLStore) List(ctx context.Context, limit int) ([]Entry, error) {
	q := s.db.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recs []record
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	out := make([]Entry, 0, len(recs))
	for _, r := range recs {
		e, err := r.entry()
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, nil
}

// Close releases the underlying connection.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r record) entry() (*Entry, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("history id %q: %w", r.ID, err)
	}
	var spec chart.ChartSpec
	if err := json.Unmarshal([]byte(r.Spec), &spec); err != nil {
		return nil, fmt.Errorf("decode spec %s: %w", r.ID, err)
	}
	return &Entry{
		ID:        id,
		CreatedAt: r.CreatedAt,
		Source:    r.Source,
		Question:  r.Question,
		File:      r.File,
		Spec:      spec,
	}, nil
}
