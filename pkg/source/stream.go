// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package source

import (
	"context"
	"sync"

	"go.uber.org/atomic"
)

// Stream is a SearchStream fed by an adapter goroutine.
//
// A Stream interfaces two goroutines, the "sender" and the "receiver". The
// sender calls Append any number of times, optionally Fail, and finally
// SenderStopped. The receiver iterates with Next and Current; Close tells the
// sender to stop early.
type Stream struct {
	ch      chan SearchResult
	count   *atomic.Uint64
	ctx     context.Context
	cancel  context.CancelFunc
	current SearchResult

	errMu sync.Mutex
	err   error
}

var _ SearchStream = (*Stream)(nil)

// NewStream creates a stream buffering up to chanSize results between sender
// and receiver.
func NewStream(chanSize int) *Stream {
	ctx, cancel := context.WithCancel(context.Background())
	return &Stream{
		ch:     make(chan SearchResult, chanSize),
		count:  atomic.NewUint64(0),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Append hands a result to the receiver. It returns false when the receiver
// dropped the stream; the sender should stop producing.
//
// This method must only be called by the sender.
func (s *Stream) Append(result SearchResult) bool {
	select {
	case s.ch <- result:
		s.count.Inc()
		return true
	case <-s.ctx.Done():
		return false
	}
}

// Fail records an error that the receiver observes after draining the
// buffered results, then stops the stream.
//
// This method must only be called by the sender, instead of SenderStopped.
func (s *Stream) Fail(err error) {
	s.errMu.Lock()
	s.err = err
	s.errMu.Unlock()
	close(s.ch)
}

// SenderStopped must be called when the sender stops calling Append.
func (s *Stream) SenderStopped() {
	close(s.ch)
}

// ResultCount returns the number of results appended so far.
func (s *Stream) ResultCount() uint64 {
	return s.count.Load()
}

// Next advances the stream. It returns false at the end of the stream or on
// error; Err tells the two apart.
func (s *Stream) Next() bool {
	result, ok := <-s.ch
	if !ok {
		return false
	}
	s.current = result
	return true
}

// Current returns the result Next advanced to.
func (s *Stream) Current() SearchResult {
	return s.current
}

// Err returns the error recorded by the sender, if any.
func (s *Stream) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Close drops the stream. The sender unblocks and stops.
func (s *Stream) Close() {
	s.cancel()
}

// sliceStream serves search results from memory, for adapters that already
// materialized their answer.
type sliceStream struct {
	results []SearchResult
	pos     int
}

// NewSliceStream wraps materialized results in a SearchStream.
func NewSliceStream(results []SearchResult) SearchStream {
	return &sliceStream{results: results}
}

func (s *sliceStream) Next() bool {
	if s.pos >= len(s.results) {
		return false
	}
	s.pos++
	return true
}

func (s *sliceStream) Current() SearchResult {
	return s.results[s.pos-1]
}

func (s *sliceStream) Err() error {
	return nil
}

func (s *sliceStream) Close() {}
