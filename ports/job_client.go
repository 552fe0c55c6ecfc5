package ports

import (
	"context"

	"goanalytics/domain/analysis"
)

// JobClient executes analysis jobs on the remote service.
//
// ctx carries the session's cancellation token: once it is done the client
// should abandon the call. Implementations return core.ErrUserCancelled for an
// abandoned call and *analysis.JobError for remote failures. Whatever a client
// returns after cancellation is discarded by the orchestrator.
type JobClient interface {
	Submit(ctx context.Context, req analysis.AnalysisRequest) (*analysis.AnalysisResult, error)
}
