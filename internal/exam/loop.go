package exam

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Op identifies one engine operation.
type Op string

const (
	OpListTests       Op = "list"
	OpRequestQuestion Op = "question"
	OpSubmitAnswer    Op = "answer"
	opSweep           Op = "sweep"
)

// Request is one unit of work routed to the engine loop.
type Request struct {
	Op     Op
	User   string
	Test   string
	Answer []int
}

type result struct {
	resp Response
	err  error
}

type workItem struct {
	req Request
	// reply is nil for sweep ticks: nobody waits for them.
	reply chan result
}

// Coordinator serializes all access to the Engine. Exactly one
// goroutine (Run) dequeues work items and calls into the engine, so the
// engine needs no internal locks: two requests can never interleave and
// a variant can never be finalized twice. Producers are the transport
// (via Dispatch) and the internal sweep ticker.
type Coordinator struct {
	engine     *Engine
	items      chan workItem
	sweepEvery time.Duration
	log        zerolog.Logger
}

// NewCoordinator wraps the engine with a work-item channel and a sweep
// interval. sweepEvery <= 0 falls back to 2 seconds.
func NewCoordinator(engine *Engine, sweepEvery time.Duration, log zerolog.Logger) *Coordinator {
	if sweepEvery <= 0 {
		sweepEvery = 2 * time.Second
	}
	return &Coordinator{
		engine:     engine,
		items:      make(chan workItem, 64),
		sweepEvery: sweepEvery,
		log:        log.With().Str("component", "coordinator").Logger(),
	}
}

// Run owns the engine until ctx is cancelled. It processes work items
// strictly one at a time in arrival order and starts the sweep ticker.
func (c *Coordinator) Run(ctx context.Context) {
	c.log.Info().Dur("sweep_every", c.sweepEvery).Msg("Engine loop started")

	go c.runSweeper(ctx)

	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("Engine loop stopped")
			return
		case item := <-c.items:
			resp, err := c.serve(ctx, item.req)
			if item.reply != nil {
				// Buffered channel: delivering the result can never
				// block the loop on a vanished producer.
				item.reply <- result{resp: resp, err: err}
			}
		}
	}
}

// runSweeper fires a sweep tick every interval, regardless of load.
func (c *Coordinator) runSweeper(ctx context.Context) {
	ticker := time.NewTicker(c.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case c.items <- workItem{req: Request{Op: opSweep}}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Dispatch submits one request and blocks until the engine loop has
// processed it, returning the engine's reply.
func (c *Coordinator) Dispatch(ctx context.Context, req Request) (Response, error) {
	reply := make(chan result, 1)

	select {
	case c.items <- workItem{req: req, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-reply:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Coordinator) serve(ctx context.Context, req Request) (Response, error) {
	switch req.Op {
	case OpListTests:
		return c.engine.ListAvailableTests(ctx, req.User)
	case OpRequestQuestion:
		return c.engine.RequestQuestion(ctx, req.User, req.Test)
	case OpSubmitAnswer:
		return c.engine.SubmitAnswer(ctx, req.User, req.Test, req.Answer)
	case opSweep:
		c.engine.Sweep(ctx)
		return Ack{}, nil
	default:
		c.log.Error().Str("op", string(req.Op)).Msg("unknown operation")
		return nil, fmt.Errorf("unknown operation %q", req.Op)
	}
}
