package driving

import (
	"context"
	"io"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
)

// StatementUpload is one uploaded statement file, undecoded.
type StatementUpload struct {
	Name        string
	Size        int64
	ContentType string
	Content     io.Reader
}

// IngestService runs the upload-and-index cycle: decode each file,
// normalize to canonical transactions, replace the session's store, and
// rebuild the session's vector index.
type IngestService interface {
	// ProcessFiles ingests a batch of uploads. File-level failures are
	// recovered into per-file statuses; an index failure is returned as an
	// error wrapping domain.ErrIndexUnavailable with the store left valid.
	ProcessFiles(ctx context.Context, session *domain.Session, uploads []StatementUpload) (*domain.IngestResult, error)

	// Reindex rebuilds the vector index from the session's current store
	// without re-ingesting files
	Reindex(ctx context.Context, session *domain.Session) (int, error)

	// Transactions returns the session's canonical transactions
	Transactions(ctx context.Context, session *domain.Session) ([]domain.Transaction, error)
}
