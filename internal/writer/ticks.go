package writer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/tokenscope/internal/model"
	"github.com/rickgao/tokenscope/internal/queue"
)

const insertTickSQL = `
	INSERT INTO price_ticks (token_id, price, ts, session_id)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (token_id, ts, session_id) DO NOTHING`

// TickWriter consumes price updates from a queue and writes them to the
// price_ticks table.
type TickWriter struct {
	cfg       WriterConfig
	sessionID string
	logger    *slog.Logger
	observer  FlushObserver

	// Input from the screener session
	input *queue.Queue[model.PriceUpdate]

	// Database
	db BatchSender

	// Batching
	batch   []tickRow
	batchMu sync.Mutex

	// Lifecycle
	ctx        context.Context
	cancel     context.CancelFunc
	consumerWG sync.WaitGroup
	flusherWG  sync.WaitGroup

	// Metrics
	metrics WriterMetrics
}

// NewTickWriter creates a new TickWriter. sessionID tags every row so that
// ticks from separate runs never collide.
func NewTickWriter(
	cfg WriterConfig,
	sessionID string,
	input *queue.Queue[model.PriceUpdate],
	db BatchSender,
	logger *slog.Logger,
) *TickWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TickWriter{
		cfg:       cfg,
		sessionID: sessionID,
		input:     input,
		db:        db,
		logger:    logger,
		batch:     make([]tickRow, 0, cfg.BatchSize),
	}
}

// SetObserver installs a flush observer. Call before Start.
func (w *TickWriter) SetObserver(o FlushObserver) {
	w.observer = o
}

// Start begins consuming updates and writing to the database.
func (w *TickWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)

	w.consumerWG.Add(1)
	go w.consumeLoop()

	w.flusherWG.Add(1)
	go w.flushLoop()

	w.logger.Info("tick writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop closes the input queue, waits for queued updates to be consumed,
// and performs a final flush.
func (w *TickWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping tick writer")

	w.input.Close()

	done := make(chan struct{})
	go func() {
		w.consumerWG.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("tick writer stop timed out", "queued", w.input.Len())
	}

	if w.cancel != nil {
		w.cancel()
	}
	w.flusherWG.Wait()

	// Final flush runs on the caller's context since ours is cancelled.
	w.flush(ctx)

	w.logger.Info("tick writer stopped")
	return nil
}

// Stats returns current metrics.
func (w *TickWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// consumeLoop reads from the input queue until it is closed and drained.
func (w *TickWriter) consumeLoop() {
	defer w.consumerWG.Done()

	for {
		u, ok := w.input.Receive()
		if !ok {
			return
		}
		w.handleUpdate(u)
	}
}

// flushLoop periodically flushes the batch.
func (w *TickWriter) flushLoop() {
	defer w.flusherWG.Done()

	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.flush(w.ctx)
		}
	}
}

// handleUpdate transforms and adds an update to the batch.
func (w *TickWriter) handleUpdate(u model.PriceUpdate) {
	row := w.transform(u)

	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush(w.ctx)
	}
}

// transform converts a PriceUpdate to a tickRow.
func (w *TickWriter) transform(u model.PriceUpdate) tickRow {
	return tickRow{
		TokenID:   u.EntityID,
		Price:     u.Price,
		Ts:        u.Timestamp,
		SessionID: w.sessionID,
	}
}

// flush writes the current batch to the database.
func (w *TickWriter) flush(ctx context.Context) {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]tickRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	conflicts, err := w.batchInsert(ctx, batch)
	if w.observer != nil {
		w.observer.ArchiveFlush(len(batch)-conflicts, err)
	}
	if err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.metrics.Inserts += int64(len(batch) - conflicts)
	w.metrics.Conflicts += int64(conflicts)
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed price ticks",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (w *TickWriter) batchInsert(ctx context.Context, rows []tickRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(insertTickSQL, r.TokenID, r.Price, r.Ts, r.SessionID)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
