package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"dealflow-backend/internal/shared/telemetry"
)

const defaultJobTimeout = 5 * time.Minute

// LocalClient dispatches messages to an in-process handler on background
// goroutines. It is the single-binary stand-in for SQS: Send returns as soon
// as the job is accepted, and a bounded semaphore caps concurrent jobs.
type LocalClient struct {
	handler    Handler
	sem        chan struct{}
	jobTimeout time.Duration
	wg         sync.WaitGroup
}

func NewLocalClient(handler Handler, concurrency int) *LocalClient {
	if concurrency < 1 {
		concurrency = 1
	}
	return &LocalClient{
		handler:    handler,
		sem:        make(chan struct{}, concurrency),
		jobTimeout: defaultJobTimeout,
	}
}

// Send accepts the message and processes it asynchronously. The job runs on
// a fresh context so it survives the request that enqueued it.
func (c *LocalClient) Send(ctx context.Context, msg Message) error {
	if c == nil || c.handler == nil {
		return errors.New("local queue has no handler")
	}
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() { <-c.sem }()

		jobCtx, cancel := context.WithTimeout(context.Background(), c.jobTimeout)
		defer cancel()

		if err := c.handler(jobCtx, msg); err != nil {
			telemetry.Error("queue.local.job_failed", map[string]any{
				"document_id": msg.DocumentID,
				"deal_id":     msg.DealID,
				"request_id":  msg.RequestID,
				"error":       err.Error(),
			})
		}
	}()
	return nil
}

// Wait blocks until all accepted jobs finish. Used on shutdown and in tests.
func (c *LocalClient) Wait() {
	c.wg.Wait()
}

var _ Client = (*LocalClient)(nil)
