package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/torrent-space-guard/internal/domain"
	"github.com/vertextoedge/torrent-space-guard/internal/domain/event"
)

const gib = int64(1024 * 1024 * 1024)

func gb(n float64) int64 {
	return int64(n * float64(gib))
}

// fakeClient implements port.DownloaderClient against an in-memory item
// list. Pause and Resume mutate item state the way the real downloader
// would, so a second cycle sees the commands' effects as ground truth.
type fakeClient struct {
	mu          sync.Mutex
	clientName  string
	items       []domain.Item
	snapshotErr error
	pauseErr    map[string]error
	resumeErr   map[string]error

	snapshots int
	paused    []string
	resumed   []string
}

func newFakeClient(name string, items ...domain.Item) *fakeClient {
	return &fakeClient{clientName: name, items: items}
}

func (c *fakeClient) Name() string { return c.clientName }

func (c *fakeClient) Snapshot(ctx context.Context) ([]domain.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots++
	if c.snapshotErr != nil {
		return nil, domain.NewTransientError("fetch snapshot from "+c.clientName, c.snapshotErr)
	}
	out := make([]domain.Item, len(c.items))
	copy(out, c.items)
	return out, nil
}

func (c *fakeClient) Pause(ctx context.Context, hash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.pauseErr[hash]; err != nil {
		return domain.NewCommandRejectedError(hash, err)
	}
	c.paused = append(c.paused, hash)
	for i := range c.items {
		if c.items[i].Hash == hash {
			c.items[i].State = domain.StateQueued
		}
	}
	return nil
}

func (c *fakeClient) Resume(ctx context.Context, hash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.resumeErr[hash]; err != nil {
		return domain.NewCommandRejectedError(hash, err)
	}
	c.resumed = append(c.resumed, hash)
	for i := range c.items {
		if c.items[i].Hash == hash {
			c.items[i].State = domain.StateActive
		}
	}
	return nil
}

func (c *fakeClient) pausedHashes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.paused))
	copy(out, c.paused)
	return out
}

func (c *fakeClient) resumedHashes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.resumed))
	copy(out, c.resumed)
	return out
}

// fakeSpace implements port.SpaceQuerier from a path-keyed map.
type fakeSpace struct {
	mu    sync.Mutex
	free  map[string]int64
	total map[string]int64
	errs  map[string]error
}

func newFakeSpace() *fakeSpace {
	return &fakeSpace{
		free:  make(map[string]int64),
		total: make(map[string]int64),
		errs:  make(map[string]error),
	}
}

func (f *fakeSpace) set(path string, free int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.free[path] = free
}

func (f *fakeSpace) FreeBytes(path string) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[path]; err != nil {
		return 0, 0, err
	}
	total, ok := f.total[path]
	if !ok {
		total = gb(1000)
	}
	return f.free[path], total, nil
}

// fakeLedger implements port.PauseLedger in memory.
type fakeLedger struct {
	mu      sync.Mutex
	recs    map[string]map[string]domain.PauseRecord
	listErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{recs: make(map[string]map[string]domain.PauseRecord)}
}

func (l *fakeLedger) Put(rec domain.PauseRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	byHash := l.recs[rec.Downloader]
	if byHash == nil {
		byHash = make(map[string]domain.PauseRecord)
		l.recs[rec.Downloader] = byHash
	}
	if existing, ok := byHash[rec.Hash]; ok {
		rec.PausedAt = existing.PausedAt
	}
	byHash[rec.Hash] = rec
	return nil
}

func (l *fakeLedger) Delete(downloader, hash string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.recs[downloader], hash)
	return nil
}

func (l *fakeLedger) List(downloader string) ([]domain.PauseRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listErr != nil {
		return nil, l.listErr
	}
	var out []domain.PauseRecord
	for _, rec := range l.recs[downloader] {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PausedAt.Equal(out[j].PausedAt) {
			return out[i].PausedAt.Before(out[j].PausedAt)
		}
		return out[i].Hash < out[j].Hash
	})
	return out, nil
}

func (l *fakeLedger) has(downloader, hash string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.recs[downloader][hash]
	return ok
}

func (l *fakeLedger) count(downloader string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.recs[downloader])
}

// recordingDispatcher collects dispatched events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (r *recordingDispatcher) Dispatch(ev event.DomainEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingDispatcher) Subscribe(h event.EventHandler)   {}
func (r *recordingDispatcher) Unsubscribe(h event.EventHandler) {}

func (r *recordingDispatcher) byName(name string) []event.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []event.DomainEvent
	for _, ev := range r.events {
		if ev.EventName() == name {
			out = append(out, ev)
		}
	}
	return out
}

// testService wires a Service around fakes for one downloader.
func testService(d Downloader, space *fakeSpace, ledger *fakeLedger) (*Service, *managedDownloader) {
	svc := New(
		&Config{TickInterval: time.Minute, CommandTimeout: 5 * time.Second},
		[]Downloader{d},
		space, ledger, event.NewNullDispatcher(), zap.NewNop())
	return svc, svc.downloaders[0]
}

func activeItem(hash, savePath string, remaining int64, added time.Time) domain.Item {
	return domain.Item{
		Hash:          hash,
		Name:          hash,
		SavePath:      savePath,
		SizeTotal:     remaining * 2,
		SizeRemaining: remaining,
		State:         domain.StateActive,
		AddedAt:       added,
	}
}

func queuedItem(hash, savePath string, remaining int64, added time.Time) domain.Item {
	item := activeItem(hash, savePath, remaining, added)
	item.State = domain.StateQueued
	return item
}

func dirReport(t interface {
	Helper()
	Fatalf(string, ...interface{})
}, report *domain.CycleReport, path string) domain.DirectoryReport {
	t.Helper()
	for _, dr := range report.Directories {
		if dr.Path == path {
			return dr
		}
	}
	t.Fatalf("no directory report for %s", path)
	return domain.DirectoryReport{}
}

var testEpoch = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
