package backend

import (
	"context"

	"github.com/sboosali/notegraph/pkg/graph"
)

// Kind says which request a Result answers.
type Kind int

const (
	KindDraw Kind = iota
	KindQuery
)

func (k Kind) String() string {
	if k == KindQuery {
		return "query"
	}
	return "draw"
}

// Result is the outcome of an asynchronous request. Exactly one of
// Document, Results or Err is meaningful, depending on Kind. Skipped is
// set when the input was empty and no request was made.
type Result struct {
	Seq      uint64
	Kind     Kind
	Input    string
	Document *graph.Document
	Results  []string
	Err      error
	Skipped  bool
}

// DrawAsync runs Draw on a new goroutine. The channel receives one Result
// and is then closed.
func (c *Client) DrawAsync(ctx context.Context, notes string) <-chan Result {
	seq := c.seq.Add(1)
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		r := Result{Seq: seq, Kind: KindDraw, Input: notes, Skipped: Empty(notes)}
		r.Document, r.Err = c.Draw(ctx, notes)
		ch <- r
	}()
	return ch
}

// QueryAsync runs Query on a new goroutine. The channel receives one
// Result and is then closed.
func (c *Client) QueryAsync(ctx context.Context, query string) <-chan Result {
	seq := c.seq.Add(1)
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		r := Result{Seq: seq, Kind: KindQuery, Input: query, Skipped: Empty(query)}
		r.Results, r.Err = c.Query(ctx, query)
		ch <- r
	}()
	return ch
}

// Seq returns the sequence number of the most recently started request.
func (c *Client) Seq() uint64 { return c.seq.Load() }
