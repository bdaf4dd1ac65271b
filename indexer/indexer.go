// Package indexer journals committed market events into a SQL table so they
// can be paged through after the fact.
package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nftmarket/core/events"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// EventRecord is one journaled event. Sequence is assigned by the database
// and strictly increases in commit order.
type EventRecord struct {
	Sequence   uint64    `gorm:"primaryKey;autoIncrement"`
	Type       string    `gorm:"index;not null"`
	Attributes string    `gorm:"type:text;not null"`
	RecordedAt time.Time `gorm:"index"`
}

func (EventRecord) TableName() string { return "market_events" }

// Entry is the decoded form of an EventRecord returned to readers.
type Entry struct {
	Sequence   uint64            `json:"sequence"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
	RecordedAt time.Time         `json:"recordedAt"`
}

// Query filters List. An empty Type matches every event; After skips
// sequences up to and including it.
type Query struct {
	Type  string
	After uint64
	Limit int
}

type Indexer struct {
	db       *gorm.DB
	logger   *slog.Logger
	now      func() time.Time
	failures atomic.Uint64
}

// Open opens or creates the sqlite journal at path. An empty path keeps the
// journal in memory.
func Open(path string, log *slog.Logger) (*Indexer, error) {
	dsn := strings.TrimSpace(path)
	if dsn == "" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("indexer: open %s: %w", dsn, err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	return New(db, log)
}

// New wraps an existing gorm handle and migrates the schema.
func New(db *gorm.DB, log *slog.Logger) (*Indexer, error) {
	if db == nil {
		return nil, fmt.Errorf("indexer: database required")
	}
	if err := db.AutoMigrate(&EventRecord{}); err != nil {
		return nil, fmt.Errorf("indexer: migrate: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Indexer{db: db, logger: log, now: time.Now}, nil
}

// SetNowFunc overrides the timestamp source used for RecordedAt.
func (i *Indexer) SetNowFunc(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	i.now = now
}

// Emit journals evt. A failed write is logged and counted; the operation that
// produced the event has already committed.
func (i *Indexer) Emit(evt events.Event) {
	if i == nil || evt == nil {
		return
	}
	payload := events.Payload(evt)
	attrs := payload.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	encoded, err := json.Marshal(attrs)
	if err != nil {
		i.fail(payload.Type, err)
		return
	}
	record := &EventRecord{Type: payload.Type, Attributes: string(encoded), RecordedAt: i.now().UTC()}
	if err := i.db.Create(record).Error; err != nil {
		i.fail(payload.Type, err)
	}
}

func (i *Indexer) fail(eventType string, err error) {
	i.failures.Add(1)
	i.logger.Warn("indexer write failed", slog.String("type", eventType), slog.Any("error", err))
}

// Failures reports how many events could not be journaled.
func (i *Indexer) Failures() uint64 { return i.failures.Load() }

// List returns events in sequence order.
func (i *Indexer) List(ctx context.Context, q Query) ([]Entry, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	tx := i.db.WithContext(ctx).Model(&EventRecord{}).Where("sequence > ?", q.After)
	if t := strings.TrimSpace(q.Type); t != "" {
		tx = tx.Where("type = ?", t)
	}
	var records []EventRecord
	if err := tx.Order("sequence ASC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("indexer: list: %w", err)
	}
	out := make([]Entry, 0, len(records))
	for _, r := range records {
		entry := Entry{Sequence: r.Sequence, Type: r.Type, RecordedAt: r.RecordedAt}
		if err := json.Unmarshal([]byte(r.Attributes), &entry.Attributes); err != nil {
			return nil, fmt.Errorf("indexer: decode event %d: %w", r.Sequence, err)
		}
		out = append(out, entry)
	}
	return out, nil
}

// Count returns the number of journaled events matching eventType, or all
// events when it is empty.
func (i *Indexer) Count(ctx context.Context, eventType string) (int64, error) {
	tx := i.db.WithContext(ctx).Model(&EventRecord{})
	if t := strings.TrimSpace(eventType); t != "" {
		tx = tx.Where("type = ?", t)
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (i *Indexer) Close() error {
	sqlDB, err := i.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
