package graph

import (
	"context"
	"sync"
)

// Query is one statement seen by MemoryClient.
type Query struct {
	Cypher string
	Params map[string]any
}

// MemoryClient records statements instead of running them. Reads answer from a queue of
// canned results, in order, and return an empty result once the queue is drained.
type MemoryClient struct {
	mu           sync.Mutex
	writes       []Query
	reads        []Query
	canned       []Result
	err          error
	connectivity error
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// FailWith makes every subsequent query return err.
func (m *MemoryClient) FailWith(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Unreachable makes VerifyConnectivity return err.
func (m *MemoryClient) Unreachable(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

// QueueRead appends a result for a future ExecuteRead.
func (m *MemoryClient) QueueRead(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.canned = append(m.canned, res)
}

func (m *MemoryClient) ExecuteWrite(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Result{}, m.err
	}
	m.writes = append(m.writes, Query{Cypher: cypher, Params: copyParams(params)})
	return Result{}, nil
}

func (m *MemoryClient) ExecuteRead(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Result{}, m.err
	}
	m.reads = append(m.reads, Query{Cypher: cypher, Params: copyParams(params)})
	if len(m.canned) == 0 {
		return Result{}, nil
	}
	res := m.canned[0]
	m.canned = m.canned[1:]
	return res, nil
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error { return nil }

// Writes returns the recorded write statements.
func (m *MemoryClient) Writes() []Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Query(nil), m.writes...)
}

// Reads returns the recorded read statements.
func (m *MemoryClient) Reads() []Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Query(nil), m.reads...)
}

func copyParams(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
