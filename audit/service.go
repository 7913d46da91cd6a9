package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kasuganosora/tradeboard/model"
	"github.com/kasuganosora/tradeboard/pricing"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	queueSize     = 256
	batchSize     = 50
	flushInterval = 2 * time.Second
)

// ExportEntry holds one export event to be recorded.
type ExportEntry struct {
	TraceID    string
	SessionID  string
	Generated  string
	Edits      int
	Report     pricing.ExportReport
	IP         string
	DurationMs int
}

// Service records export events asynchronously in batches.
type Service struct {
	db     *gorm.DB
	ch     chan *model.ExportAudit
	stopCh chan struct{}
	wg     sync.WaitGroup
	logger *zap.Logger
}

// New creates a new audit Service and starts its background worker.
func New(db *gorm.DB, logger *zap.Logger) *Service {
	svc := &Service{
		db:     db,
		ch:     make(chan *model.ExportAudit, queueSize),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// LogExport enqueues an export event for async DB write. It never blocks
// the request; when the queue is full the event is dropped with a warning.
func (svc *Service) LogExport(entry ExportEntry) {
	keys := entry.Report.PrunedKeys
	if keys == nil {
		keys = []string{}
	}
	keysJSON, _ := json.Marshal(keys)
	record := &model.ExportAudit{
		TraceID:    clip(entry.TraceID, model.IDSize),
		SessionID:  clip(entry.SessionID, model.IDSize),
		Generated:  clip(entry.Generated, model.GeneratedSize),
		Entries:    entry.Report.Entries,
		Carried:    entry.Report.Carried,
		Refreshed:  entry.Report.Refreshed,
		Retained:   entry.Report.Retained,
		Pruned:     entry.Report.Pruned,
		Overlaid:   entry.Report.Overlaid,
		Edits:      entry.Edits,
		PrunedKeys: datatypes.JSON(keysJSON),
		IP:         clip(entry.IP, model.IPSize),
		DurationMs: entry.DurationMs,
	}
	select {
	case svc.ch <- record:
	default:
		svc.logger.Warn("audit queue full, dropping export entry",
			zap.String("trace_id", entry.TraceID))
	}
}

// clip cuts s to at most n characters so strict SQL modes accept it.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Recent returns the latest export audits, newest first.
func (svc *Service) Recent(ctx context.Context, limit int) ([]model.ExportAudit, error) {
	var rows []model.ExportAudit
	err := svc.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

// Stop flushes remaining entries and shuts down the worker.
// It blocks until the worker goroutine has finished.
func (svc *Service) Stop() {
	select {
	case <-svc.stopCh:
	default:
		close(svc.stopCh)
	}
	svc.wg.Wait()
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]*model.ExportAudit, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("audit batch write failed", zap.Error(err), zap.Int("rows", len(batch)))
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-svc.ch:
			batch = append(batch, entry)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			for {
				select {
				case entry := <-svc.ch:
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		}
	}
}
