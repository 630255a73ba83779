package search

import (
	"context"

	"github.com/kailas-cloud/esb/internal/domain/search/request"
	"github.com/kailas-cloud/esb/internal/domain/search/result"
)

// Engine executes search requests against the cluster.
// A scroll page with no hits marks the end of the scroll.
type Engine interface {
	Execute(ctx context.Context, req *request.Request) (result.Response, error)
	OpenScroll(ctx context.Context, req *request.Request, keepAlive string) (result.Response, error)
	ContinueScroll(ctx context.Context, req *request.Request, scrollID, keepAlive string) (result.Response, error)
	CloseScroll(ctx context.Context, scrollID string) error
}
