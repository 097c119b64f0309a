package llm

import (
	"context"
	"sync"
)

// FakeClient returns scripted responses in order, for offline/testing use.
// When the script runs out it keeps returning the last entry.
type FakeClient struct {
	mu       sync.Mutex
	script   []FakeReply
	Requests []Request
}

// FakeReply is one scripted step: either a response or an error.
type FakeReply struct {
	Resp *Response
	Err  error
}

func NewFakeClient(script ...FakeReply) *FakeClient {
	return &FakeClient{script: script}
}

func (f *FakeClient) Name() string { return "fake" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Generate(ctx context.Context, req Request) (*Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, req)
	if len(f.script) == 0 {
		return &Response{}, nil
	}
	step := f.script[0]
	if len(f.script) > 1 {
		f.script = f.script[1:]
	}
	if step.Err != nil {
		return nil, step.Err
	}
	if step.Resp == nil {
		return &Response{}, nil
	}
	cp := *step.Resp
	return &cp, nil
}
