package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driven"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driving"
	"github.com/ledgerlens/ledgerlens-core/internal/normalisers"
	"github.com/ledgerlens/ledgerlens-core/internal/statements"
)

// upsertBatchSize bounds one index submission.
const upsertBatchSize = 100

// ingestLockTTL bounds how long a crashed replica can block a session's
// ingestion.
const ingestLockTTL = 2 * time.Minute

// Ensure IngestOrchestrator implements IngestService
var _ driving.IngestService = (*IngestOrchestrator)(nil)

// IngestOrchestrator coordinates the upload pipeline:
//  1. Decode each file into a raw table
//  2. Normalise each table to canonical transactions
//  3. Post-process the combined batch (clean, dedupe, sort, derive)
//  4. Replace the session's transaction store
//  5. Rebuild the session's index collection from scratch
//
// Steps 1-2 recover per file; a bad file never aborts the batch. Step 5
// failing leaves the store valid and is reported as an index error.
type IngestOrchestrator struct {
	store      driven.TransactionStore
	index      driven.VectorIndex
	normaliser *normalisers.Normaliser
	pipeline   driven.BatchPipeline
	lock       driven.DistributedLock
	logger     *slog.Logger
}

// IngestOrchestratorConfig holds dependencies for IngestOrchestrator.
// Lock is optional; when set, concurrent rebuilds of the same session
// across replicas are rejected.
type IngestOrchestratorConfig struct {
	Store      driven.TransactionStore
	Index      driven.VectorIndex
	Normaliser *normalisers.Normaliser
	Pipeline   driven.BatchPipeline
	Lock       driven.DistributedLock
	Logger     *slog.Logger
}

// NewIngestOrchestrator creates a new ingest orchestrator.
func NewIngestOrchestrator(cfg IngestOrchestratorConfig) *IngestOrchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestOrchestrator{
		store:      cfg.Store,
		index:      cfg.Index,
		normaliser: cfg.Normaliser,
		pipeline:   cfg.Pipeline,
		lock:       cfg.Lock,
		logger:     logger,
	}
}

// acquireSessionLock takes the session's ingest lock when a lock
// backend is configured. The returned release func is a no-op otherwise.
func (o *IngestOrchestrator) acquireSessionLock(ctx context.Context, session *domain.Session) (func(), error) {
	if o.lock == nil {
		return func() {}, nil
	}

	name := "ingest:" + session.ID
	ok, err := o.lock.Acquire(ctx, name, ingestLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquiring ingest lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: ingestion already running for session %s", domain.ErrInvalidInput, session.ID)
	}
	return func() {
		if err := o.lock.Release(ctx, name); err != nil {
			o.logger.Warn("failed to release ingest lock", "session_id", session.ID, "error", err)
		}
	}, nil
}

// ProcessFiles ingests a batch of uploads for the session.
func (o *IngestOrchestrator) ProcessFiles(ctx context.Context, session *domain.Session, uploads []driving.StatementUpload) (*domain.IngestResult, error) {
	release, err := o.acquireSessionLock(ctx, session)
	if err != nil {
		return nil, err
	}
	defer release()

	result := &domain.IngestResult{}

	var batch []domain.Transaction
	for _, upload := range uploads {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		txs, status := o.processFile(upload)
		result.Statuses = append(result.Statuses, status)
		batch = append(batch, txs...)
	}

	batch = o.pipeline.Process(batch)
	result.Transactions = len(batch)

	if err := o.store.Replace(ctx, session.ID, batch); err != nil {
		return nil, fmt.Errorf("replacing transaction batch: %w", err)
	}

	o.logger.Info("batch stored",
		"session_id", session.ID,
		"files", len(uploads),
		"transactions", len(batch),
	)

	indexed, err := o.rebuildIndex(ctx, session, batch)
	result.Indexed = indexed
	if err != nil {
		// The store already holds the batch; only search is degraded.
		return result, err
	}
	return result, nil
}

// processFile decodes and normalises one upload. Failures are folded
// into the returned status.
func (o *IngestOrchestrator) processFile(upload driving.StatementUpload) ([]domain.Transaction, domain.FileStatus) {
	status := domain.FileStatus{File: upload.Name}

	if !statements.Accepted(upload.ContentType) {
		status.Outcome = domain.FileError
		status.Reason = fmt.Sprintf("unsupported content type %q", upload.ContentType)
		return nil, status
	}
	if upload.Size > statements.MaxStatementSize {
		status.Outcome = domain.FileError
		status.Reason = domain.ErrFileTooLarge.Error()
		return nil, status
	}

	table, err := statements.Read(upload.Name, upload.Content)
	if err != nil {
		status.Outcome = domain.FileError
		status.Reason = err.Error()
		return nil, status
	}

	txs, err := o.normaliser.Normalise(table)
	if err != nil {
		status.Outcome = domain.FileError
		status.Reason = err.Error()
		return nil, status
	}
	if len(txs) == 0 {
		status.Outcome = domain.FileNoValidRows
		return nil, status
	}

	status.Outcome = domain.FileOK
	status.Rows = len(txs)
	return txs, status
}

// Reindex rebuilds the vector index from the session's current store.
func (o *IngestOrchestrator) Reindex(ctx context.Context, session *domain.Session) (int, error) {
	release, err := o.acquireSessionLock(ctx, session)
	if err != nil {
		return 0, err
	}
	defer release()

	batch, err := o.store.All(ctx, session.ID)
	if err != nil {
		return 0, fmt.Errorf("loading transaction batch: %w", err)
	}
	return o.rebuildIndex(ctx, session, batch)
}

// Transactions returns the session's canonical transactions.
func (o *IngestOrchestrator) Transactions(ctx context.Context, session *domain.Session) ([]domain.Transaction, error) {
	return o.store.All(ctx, session.ID)
}

// rebuildIndex drops the session's collection and re-adds every
// document in fixed-size batches. Positional ids make the rebuild
// idempotent.
func (o *IngestOrchestrator) rebuildIndex(ctx context.Context, session *domain.Session, batch []domain.Transaction) (int, error) {
	if err := o.index.Reset(ctx, session); err != nil {
		return 0, o.indexError("resetting index collection", err)
	}

	docs := BuildDocuments(batch)
	indexed := 0
	for start := 0; start < len(docs); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		if err := o.index.Upsert(ctx, session, docs[start:end]); err != nil {
			return indexed, o.indexError("indexing documents", err)
		}
		indexed = end
	}

	o.logger.Info("index rebuilt", "session_id", session.ID, "documents", indexed)
	return indexed, nil
}

func (o *IngestOrchestrator) indexError(op string, err error) error {
	if errors.Is(err, domain.ErrIndexUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrIndexUnavailable, err)
}
