package search

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/esb/internal/domain"
	"github.com/kailas-cloud/esb/internal/domain/search/request"
	"github.com/kailas-cloud/esb/internal/domain/search/result"
)

// Cursor iterates a scroll page by page. Not safe for concurrent use.
type Cursor struct {
	svc       *Service
	req       request.Request
	keepAlive string

	scrollID string
	started  bool
	done     bool
	closed   bool
}

// Next returns the next page of hits, or io.EOF once the scroll is drained.
// The first page also carries the total and aggregations of the request.
func (c *Cursor) Next(ctx context.Context) (result.Response, error) {
	if c.closed {
		return result.Response{}, domain.ErrScrollClosed
	}
	if c.done {
		return result.Response{}, io.EOF
	}

	var (
		resp result.Response
		err  error
		op   string
	)
	start := time.Now()
	if !c.started {
		op = OpScrollOpen
		if err = c.req.Validate(); err != nil {
			return result.Response{}, err
		}
		resp, err = c.svc.engine.OpenScroll(ctx, &c.req, c.keepAlive)
	} else {
		op = OpScrollNext
		resp, err = c.svc.engine.ContinueScroll(ctx, &c.req, c.scrollID, c.keepAlive)
	}
	c.svc.observe(op, &c.req, start, err, zap.Int("hits", len(resp.Hits)))
	if err != nil {
		return result.Response{}, fmt.Errorf("%s: %w", op, err)
	}

	c.started = true
	if resp.ScrollID != "" {
		c.scrollID = resp.ScrollID
	}
	if len(resp.Hits) == 0 {
		c.done = true
		return result.Response{}, io.EOF
	}
	return resp, nil
}

// ScrollID returns the current engine-side scroll id.
func (c *Cursor) ScrollID() string { return c.scrollID }

// Close releases the engine-side scroll. Calling Close again is a no-op.
func (c *Cursor) Close(ctx context.Context) error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.scrollID == "" {
		return nil
	}

	start := time.Now()
	err := c.svc.engine.CloseScroll(ctx, c.scrollID)
	c.svc.observe(OpScrollClose, &c.req, start, err)
	if err != nil {
		return fmt.Errorf("%s: %w", OpScrollClose, err)
	}
	return nil
}

// Each calls fn for every page and always closes the cursor.
// An error from fn stops the iteration and is returned.
func (c *Cursor) Each(ctx context.Context, fn func(result.Response) error) (err error) {
	defer func() {
		if cerr := c.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	for {
		page, nerr := c.Next(ctx)
		if nerr == io.EOF {
			return nil
		}
		if nerr != nil {
			return nerr
		}
		if ferr := fn(page); ferr != nil {
			return ferr
		}
	}
}
