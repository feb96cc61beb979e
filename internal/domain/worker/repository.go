package worker

import "context"

type WorkerRepository interface {
	// Create encrypts PII and fills the lookup hashes
	Create(ctx context.Context, worker Worker) (Worker, error)

	// GetByID returns ErrWorkerNotFound when missing
	GetByID(ctx context.Context, id string) (Worker, error)

	// GetByUID resolves the public identifier carried in QR tokens
	GetByUID(ctx context.Context, uid string) (Worker, error)

	// GetByPhone looks the worker up by the phone lookup hash
	GetByPhone(ctx context.Context, phone string) (Worker, error)

	// BackfillLookupHashes fills missing hash columns for up to limit rows
	// with id greater than afterID, in id order. An empty afterID starts from the beginning.
	BackfillLookupHashes(ctx context.Context, afterID string, limit int) (HashBackfillResult, error)
}
