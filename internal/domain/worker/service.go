package worker

import "context"

type WorkerService interface {
	Register(ctx context.Context, req CreateWorkerRequest) (WorkerResponse, error)
	Get(ctx context.Context, id string) (WorkerResponse, error)
	LookupByPhone(ctx context.Context, phone string) (WorkerResponse, error)
}
