package base

import "context"

type BaseService interface {
	CreateBase(ctx context.Context, req CreateBaseRequest) (BaseResponse, error)

	// ListBases returns the bases the caller can see
	ListBases(ctx context.Context) ([]BaseResponse, error)

	CreateJob(ctx context.Context, req CreateJobRequest) (JobResponse, error)
	UpdateJob(ctx context.Context, req UpdateJobRequest) (JobResponse, error)
	ListJobs(ctx context.Context, baseID string) ([]JobResponse, error)
}
