// Package gormstorage journals requests through gorm. It serves both the
// sqlite and the postgres journal.
package gormstorage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/fibs-geotag/mapsync/internal/database"
	"github.com/fibs-geotag/mapsync/internal/queue"
	"github.com/fibs-geotag/mapsync/pkg/core"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// flushInterval bounds how long a journaled request may wait in the queue.
const flushInterval = 2 * time.Second

// RequestRow is the persisted form of core.RequestRecord.
type RequestRow struct {
	ID         uint      `gorm:"primarykey"`
	CreatedAt  time.Time
	SentAt     time.Time `gorm:"index:idx_request_sent_at"`
	Kind       string    `gorm:"size:16;index:idx_request_kind"`
	ImageID    int       `gorm:"index:idx_request_image_id"`
	Path       string    `gorm:"size:255"`
	Query      string
	Params     datatypes.JSON
	OK         bool
	Error      string
	DurationMs float64
}

func (*RequestRow) TableName() string {
	return "geotag_requests"
}

// Dependencies holds the backend's collaborators.
type Dependencies struct {
	DB     *gorm.DB
	Logger *slog.Logger
	// DumpPath, when set, receives periodic VACUUM INTO copies of an
	// in-memory sqlite journal.
	DumpPath     string
	DumpInterval time.Duration
}

// Backend writes journal rows from a background goroutine.
type Backend struct {
	deps     Dependencies
	queue    *queue.Queue[RequestRow]
	writeMu  sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
	started  bool
}

// New creates a gorm backend. Init must be called before use.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Backend{
		deps:     deps,
		queue:    queue.New[RequestRow](),
		stopChan: make(chan struct{}),
	}
}

// Init migrates the schema and starts the writer.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("gorm journal: no database")
	}
	if err := b.deps.DB.AutoMigrate(&RequestRow{}); err != nil {
		return fmt.Errorf("failed to migrate journal schema: %w", err)
	}

	b.started = true
	b.wg.Add(1)
	go b.writerLoop()

	if b.deps.DumpPath != "" && b.deps.DumpInterval > 0 {
		b.wg.Add(1)
		go b.dumpLoop()
	}

	b.deps.Logger.Info("Journal ready", "dialect", b.deps.DB.Dialector.Name())
	return nil
}

// Close stops the background goroutines and writes whatever is still queued.
func (b *Backend) Close() error {
	if !b.started {
		return nil
	}
	b.started = false
	close(b.stopChan)
	b.wg.Wait()

	b.flush()
	if b.deps.DumpPath != "" {
		if err := database.DumpMemoryDBToDisk(b.deps.DB, b.deps.DumpPath); err != nil {
			return err
		}
	}
	return nil
}

// RecordRequest queues r for writing.
func (b *Backend) RecordRequest(r *core.RequestRecord) error {
	b.queue.Push(toRow(r))
	return nil
}

// RecentRequests returns up to limit requests, newest first. Queued rows are
// written before the query runs.
func (b *Backend) RecentRequests(limit int) ([]core.RequestRecord, error) {
	b.flush()

	var rows []RequestRow
	q := b.deps.DB.Order("sent_at desc").Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	out := make([]core.RequestRecord, len(rows))
	for i := range rows {
		out[i] = rows[i].Record()
	}
	return out, nil
}

// Pending returns the number of rows waiting to be written.
func (b *Backend) Pending() int {
	return b.queue.Len()
}

func (b *Backend) writerLoop() {
	defer b.wg.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-b.queue.Ready():
			b.flush()
		case <-ticker.C:
			b.flush()
		}
	}
}

func (b *Backend) dumpLoop() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.deps.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			b.writeMu.Lock()
			err := database.DumpMemoryDBToDisk(b.deps.DB, b.deps.DumpPath)
			b.writeMu.Unlock()
			if err != nil {
				b.deps.Logger.Error("Failed to dump journal", "path", b.deps.DumpPath, "error", err)
				continue
			}
			b.deps.Logger.Debug("Dumped journal to disk", "path", b.deps.DumpPath, "duration", time.Since(start))
		}
	}
}

// flush writes all queued rows in one transaction. Rows are re-queued if the
// write fails.
func (b *Backend) flush() {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if b.queue.Empty() {
		return
	}
	rows := b.queue.GetAndEmpty()

	tx := b.deps.DB.Begin()
	if err := tx.Create(&rows).Error; err != nil {
		b.deps.Logger.Error("Failed to write journal rows", "count", len(rows), "error", err)
		tx.Rollback()
		b.queue.Push(rows...)
		return
	}
	if err := tx.Commit().Error; err != nil {
		b.deps.Logger.Error("Failed to commit journal rows", "count", len(rows), "error", err)
		b.queue.Push(rows...)
	}
}

func toRow(r *core.RequestRecord) RequestRow {
	row := RequestRow{
		SentAt:     r.SentAt,
		Kind:       r.Kind,
		ImageID:    r.ImageID,
		Path:       r.Path,
		Query:      r.Query,
		OK:         r.OK,
		Error:      r.Error,
		DurationMs: float64(r.Duration) / float64(time.Millisecond),
	}
	if values, err := url.ParseQuery(r.Query); err == nil && len(values) > 0 {
		params := make(map[string]string, len(values))
		for k := range values {
			params[k] = values.Get(k)
		}
		if data, err := json.Marshal(params); err == nil {
			row.Params = datatypes.JSON(data)
		}
	}
	return row
}

// Record converts the row back to a journal record.
func (r *RequestRow) Record() core.RequestRecord {
	return core.RequestRecord{
		Kind:     r.Kind,
		ImageID:  r.ImageID,
		Path:     r.Path,
		Query:    r.Query,
		OK:       r.OK,
		Error:    r.Error,
		Duration: time.Duration(r.DurationMs * float64(time.Millisecond)),
		SentAt:   r.SentAt,
	}
}
