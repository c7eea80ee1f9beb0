package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	pgBatchSize     = 50
	pgFlushInterval = 5 * time.Second
)

// pgSink owns the buffer shared by a PGHandler and its derived handlers.
type pgSink struct {
	db     *gorm.DB
	mu     sync.Mutex
	buffer []models.SystemLog
	ticker *time.Ticker
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// PGHandler is an slog.Handler that batches ERROR+ logs into system_logs.
type PGHandler struct {
	sink   *pgSink
	attrs  []boundAttr
	groups []string
}

// boundAttr is an attribute added via WithAttrs. Grouped attributes carry
// their full dotted key and always land in extra.
type boundAttr struct {
	attr    slog.Attr
	grouped bool
}

func NewPGHandler(db *gorm.DB) *PGHandler {
	sink := &pgSink{
		db:     db,
		buffer: make([]models.SystemLog, 0, pgBatchSize),
		ticker: time.NewTicker(pgFlushInterval),
		done:   make(chan struct{}),
	}
	sink.wg.Add(1)
	go sink.flushLoop()
	return &PGHandler{sink: sink}
}

func (s *pgSink) flushLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ticker.C:
			s.flush()
		case <-s.done:
			s.flush()
			return
		}
	}
}

func (s *pgSink) flush() {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.buffer
	s.buffer = make([]models.SystemLog, 0, pgBatchSize)
	s.mu.Unlock()

	// Warn stays below the sink's level so a failed flush is not re-queued.
	if err := s.db.CreateInBatches(batch, pgBatchSize).Error; err != nil {
		slog.Warn("failed to flush system logs to DB", "error", err.Error(), "count", len(batch))
	}
}

func (s *pgSink) add(entry models.SystemLog) {
	s.mu.Lock()
	s.buffer = append(s.buffer, entry)
	needFlush := len(s.buffer) >= pgBatchSize
	s.mu.Unlock()

	if needFlush {
		go s.flush()
	}
}

// Stop flushes what is buffered and stops the background loop.
func (h *PGHandler) Stop() {
	h.sink.once.Do(func() {
		h.sink.ticker.Stop()
		close(h.sink.done)
		h.sink.wg.Wait()
	})
}

// Flush writes buffered records immediately.
func (h *PGHandler) Flush() {
	h.sink.flush()
}

// Enabled only handles ERROR and above.
func (h *PGHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *PGHandler) Handle(_ context.Context, record slog.Record) error {
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	extra := make(map[string]any)
	for _, b := range h.attrs {
		if b.grouped {
			extra[b.attr.Key] = attrValue(b.attr.Value.Resolve())
			continue
		}
		applyAttr(&entry, extra, b.attr)
	}
	record.Attrs(func(a slog.Attr) bool {
		if len(h.groups) > 0 {
			extra[groupKey(h.groups, a.Key)] = attrValue(a.Value.Resolve())
			return true
		}
		applyAttr(&entry, extra, a)
		return true
	})

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	h.sink.add(entry)
	return nil
}

// applyAttr promotes well-known keys to columns. Unknown keys go to the
// extra JSON column.
func applyAttr(entry *models.SystemLog, extra map[string]any, a slog.Attr) {
	a.Value = a.Value.Resolve()
	switch a.Key {
	case "app_id":
		entry.AppID = a.Value.String()
	case "trace_id":
		entry.TraceID = a.Value.String()
	case "account_id", "user_id":
		s := a.Value.String()
		entry.AccountID = &s
	case "action":
		entry.Action = a.Value.String()
	case "error":
		entry.Error = a.Value.String()
	case "latency_ms":
		switch a.Value.Kind() {
		case slog.KindFloat64:
			entry.LatencyMs = int(math.Round(a.Value.Float64()))
		case slog.KindInt64:
			entry.LatencyMs = int(a.Value.Int64())
		case slog.KindDuration:
			entry.LatencyMs = int(a.Value.Duration().Milliseconds())
		}
	default:
		extra[a.Key] = attrValue(a.Value)
	}
}

func attrValue(v slog.Value) any {
	if v.Kind() == slog.KindGroup {
		m := make(map[string]any)
		for _, a := range v.Group() {
			m[a.Key] = attrValue(a.Value.Resolve())
		}
		return m
	}
	return v.Any()
}

func groupKey(groups []string, key string) string {
	return strings.Join(groups, ".") + "." + key
}

func (h *PGHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.attrs = append([]boundAttr{}, h.attrs...)
	for _, a := range attrs {
		if len(h.groups) > 0 {
			next.attrs = append(next.attrs, boundAttr{attr: slog.Attr{Key: groupKey(h.groups, a.Key), Value: a.Value}, grouped: true})
			continue
		}
		next.attrs = append(next.attrs, boundAttr{attr: a})
	}
	return &next
}

func (h *PGHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string{}, h.groups...), name)
	return &next
}
