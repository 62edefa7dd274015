package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bft-labs/thumbship/internal/domain"
	"github.com/bft-labs/thumbship/internal/ports"
)

var errNotFound = errors.New("404 not found")

// fakeSource serves a fixed manifest.
type fakeSource struct {
	data string
	err  error
}

func (s fakeSource) Name() string { return "memory://manifest" }

func (s fakeSource) Read(ctx context.Context) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte(s.data), nil
}

// fakeFetcher returns "img:<url>" for every URL except those listed in fail.
type fakeFetcher struct {
	fail  map[string]error
	calls atomic.Int32
}

func newFakeFetcher(failing ...string) *fakeFetcher {
	f := &fakeFetcher{fail: make(map[string]error)}
	for _, u := range failing {
		f.fail[u] = errNotFound
	}
	return f
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls.Add(1)
	if err, ok := f.fail[url]; ok {
		return nil, err
	}
	return []byte("img:" + url), nil
}

// fakeResizer prefixes the input with "thumb:" and records requested sizes.
type fakeResizer struct {
	mu    sync.Mutex
	sizes [][2]int
	calls atomic.Int32
}

func (r *fakeResizer) Resize(ctx context.Context, data []byte, w, h int) ([]byte, error) {
	r.calls.Add(1)
	r.mu.Lock()
	r.sizes = append(r.sizes, [2]int{w, h})
	r.mu.Unlock()
	if strings.Contains(string(data), "garbage") {
		return nil, errors.New("image: unknown format")
	}
	return append([]byte("thumb:"), data...), nil
}

// fakeSink records every bulk insert. insert, when set, decides the result.
type fakeSink struct {
	mu     sync.Mutex
	calls  [][]domain.PersistableImage
	opened int
	closed int

	openErr  error
	closeErr error
	insert   func(records []domain.PersistableImage) (domain.InsertResult, error)
}

func (s *fakeSink) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened++
	return s.openErr
}

func (s *fakeSink) BulkInsert(ctx context.Context, records []domain.PersistableImage) (domain.InsertResult, error) {
	s.mu.Lock()
	s.calls = append(s.calls, append([]domain.PersistableImage(nil), records...))
	insert := s.insert
	s.mu.Unlock()
	if insert != nil {
		return insert(records)
	}
	return domain.InsertResult{Inserted: len(records)}, nil
}

func (s *fakeSink) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return s.closeErr
}

func (s *fakeSink) Calls() [][]domain.PersistableImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]domain.PersistableImage(nil), s.calls...)
}

func (s *fakeSink) IDs() []string {
	var ids []string
	for _, call := range s.Calls() {
		for _, r := range call {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// fakeProgress keeps every saved checkpoint.
type fakeProgress struct {
	mu      sync.Mutex
	saved   []ports.Checkpoint
	err     error
	loadErr error
}

func (p *fakeProgress) Load(ctx context.Context) (ports.Checkpoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loadErr != nil {
		return ports.Checkpoint{}, p.loadErr
	}
	if len(p.saved) == 0 {
		return ports.Checkpoint{}, nil
	}
	return p.saved[len(p.saved)-1], nil
}

func (p *fakeProgress) Save(ctx context.Context, cp ports.Checkpoint) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.saved = append(p.saved, cp)
	return nil
}

// reportCollector is a BatchObserver that keeps every report.
type reportCollector struct {
	mu      sync.Mutex
	reports []domain.BatchReport
}

func (c *reportCollector) OnBatchComplete(r domain.BatchReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, r)
}

func (c *reportCollector) Reports() []domain.BatchReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.BatchReport(nil), c.reports...)
}

func entities(ids ...string) []domain.WorkingEntity {
	out := make([]domain.WorkingEntity, len(ids))
	for i, id := range ids {
		out[i] = domain.WorkingEntity{Index: i, ID: id, URL: "http://x/" + id + ".png"}
	}
	return out
}
