package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/torrent-space-guard/internal/domain"
	"github.com/vertextoedge/torrent-space-guard/internal/domain/event"
	"github.com/vertextoedge/torrent-space-guard/internal/port"
)

// Config contains scheduler service configuration
type Config struct {
	// TickInterval is the period between automatic cycles per downloader.
	TickInterval time.Duration

	// CommandTimeout bounds every external call: snapshot fetch, pause,
	// resume. A timeout degrades the affected cycle to skip-and-report.
	CommandTimeout time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		TickInterval:   2 * time.Minute,
		CommandTimeout: 30 * time.Second,
	}
}

// Downloader bundles one downloader client with its scheduling policy.
type Downloader struct {
	Client      port.DownloaderClient
	Directories []domain.MonitoredDirectory

	// MaxActive caps simultaneously active items across the downloader's
	// directories. 0 means no cap.
	MaxActive int

	// MaxActiveBytes caps the summed remaining size of active items.
	// 0 means no cap.
	MaxActiveBytes int64

	// ReleaseOrder is ReleaseByAge or ReleaseBySize.
	ReleaseOrder string

	// SmartSkip keeps trying smaller resume candidates after a misfit.
	SmartSkip bool
}

// managedDownloader is the service's per-downloader runtime state. The
// mutex serializes cycles so ledger access stays single-writer; the stall
// map feeds the deadlock guard across cycles.
type managedDownloader struct {
	client         port.DownloaderClient
	dirs           []domain.MonitoredDirectory
	maxActive      int
	maxActiveBytes int64
	releaseOrder   string
	smartSkip      bool

	mu      sync.Mutex
	stalls  map[string]int
	trigger chan struct{}
}

func (d *managedDownloader) name() string {
	return d.client.Name()
}

// Service runs scheduling cycles for a set of downloaders, driven by a
// periodic tick and by item-added events. Cycles for distinct downloaders
// run concurrently; cycles for the same downloader never overlap.
type Service struct {
	cfg    *Config
	space  port.SpaceQuerier
	ledger port.PauseLedger
	events event.EventDispatcher
	logger *zap.Logger
	now    func() time.Time

	downloaders []*managedDownloader

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new scheduler Service
func New(cfg *Config, downloaders []Downloader, space port.SpaceQuerier, ledger port.PauseLedger, events event.EventDispatcher, logger *zap.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.TickInterval == 0 {
		cfg.TickInterval = 2 * time.Minute
	}
	if cfg.CommandTimeout == 0 {
		cfg.CommandTimeout = 30 * time.Second
	}
	if events == nil {
		events = event.NewNullDispatcher()
	}

	managed := make([]*managedDownloader, 0, len(downloaders))
	for _, d := range downloaders {
		managed = append(managed, &managedDownloader{
			client:         d.Client,
			dirs:           d.Directories,
			maxActive:      d.MaxActive,
			maxActiveBytes: d.MaxActiveBytes,
			releaseOrder:   d.ReleaseOrder,
			smartSkip:      d.SmartSkip,
			stalls:         make(map[string]int),
			trigger:        make(chan struct{}, 1),
		})
	}

	return &Service{
		cfg:         cfg,
		space:       space,
		ledger:      ledger,
		events:      events,
		logger:      logger,
		now:         time.Now,
		downloaders: managed,
	}
}

// Start starts the scheduler service and blocks until ctx is cancelled
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler service already running")
	}
	s.running = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.logger.Info("scheduler service started",
		zap.Duration("tick_interval", s.cfg.TickInterval),
		zap.Int("downloaders", len(s.downloaders)))

	for _, d := range s.downloaders {
		s.wg.Add(1)
		go s.worker(ctx, d)
	}

	s.wg.Add(1)
	go s.tickLoop(ctx)

	// Run one cycle up front so a restart reconciles the ledger with the
	// downloaders' actual state immediately.
	s.TriggerAll()

	<-ctx.Done()
	s.wg.Wait()
	s.logger.Info("scheduler service stopped")
	return nil
}

// Stop stops the scheduler service
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.running = false
}

// TriggerAll requests an immediate cycle for every downloader. Triggers
// coalesce: a downloader with a cycle already pending gets no second one.
func (s *Service) TriggerAll() {
	for _, d := range s.downloaders {
		s.triggerOne(d)
	}
}

func (s *Service) triggerOne(d *managedDownloader) {
	select {
	case d.trigger <- struct{}{}:
	default:
	}
}

// worker drains one downloader's trigger channel, running one cycle per
// trigger. The channel serializes cycles for this downloader while other
// downloaders proceed independently.
func (s *Service) worker(ctx context.Context, d *managedDownloader) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.trigger:
			s.runCycle(ctx, d)
		}
	}
}

// tickLoop fans the periodic tick out to every downloader
func (s *Service) tickLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.TriggerAll()
		}
	}
}

// Handle implements event.EventHandler: an item-added notification runs an
// immediate cycle for its downloader so the new item can be held before it
// starts consuming space.
func (s *Service) Handle(ev event.DomainEvent) error {
	added, ok := ev.(event.ItemAdded)
	if !ok {
		return nil
	}
	for _, d := range s.downloaders {
		if d.name() == added.Downloader {
			s.triggerOne(d)
			return nil
		}
	}
	s.logger.Debug("item added for unknown downloader",
		zap.String("downloader", added.Downloader),
		zap.String("hash", added.Hash))
	return nil
}

// HandledEvents returns the events this service reacts to
func (s *Service) HandledEvents() []string {
	return []string{ItemAddedEventName}
}

// ItemAddedEventName is the event name that triggers an immediate cycle.
const ItemAddedEventName = "item.added"
