package qbittorrent

import (
	"context"
	"time"

	qbt "github.com/autobrr/go-qbittorrent"

	"github.com/vertextoedge/torrent-space-guard/internal/domain"
	"github.com/vertextoedge/torrent-space-guard/internal/port"
)

// Client adapts one qBittorrent instance to the scheduler's downloader
// surface. Snapshot failures are reported as transient, pause/resume
// refusals as rejected commands, so the scheduler can apply its isolation
// rules without knowing the Web API.
type Client struct {
	name     string
	category string
	qb       *qbt.Client
}

// Ensure Client implements port.DownloaderClient
var _ port.DownloaderClient = (*Client)(nil)

// Config contains connection settings for one qBittorrent instance
type Config struct {
	Name     string
	URL      string
	Username string
	Password string

	// Category limits snapshots to items in this category. Empty means all.
	Category string

	// Timeout bounds every Web API call.
	Timeout time.Duration
}

// NewClient creates a new qBittorrent client adapter
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		name:     cfg.Name,
		category: cfg.Category,
		qb: qbt.NewClient(qbt.Config{
			Host:     cfg.URL,
			Username: cfg.Username,
			Password: cfg.Password,
			Timeout:  int(timeout.Seconds()),
		}),
	}
}

// Name returns the configured downloader identity
func (c *Client) Name() string {
	return c.name
}

// Login authenticates against the qBittorrent Web API
func (c *Client) Login(ctx context.Context) error {
	if err := c.qb.LoginCtx(ctx); err != nil {
		return domain.NewTransientError("login "+c.name, err)
	}
	return nil
}

// Snapshot returns the full item list with canonical activity states
func (c *Client) Snapshot(ctx context.Context) ([]domain.Item, error) {
	opts := qbt.TorrentFilterOptions{}
	if c.category != "" {
		opts.Category = c.category
	}

	torrents, err := c.qb.GetTorrentsCtx(ctx, opts)
	if err != nil {
		return nil, domain.NewTransientError("fetch snapshot from "+c.name, err)
	}

	items := make([]domain.Item, 0, len(torrents))
	for _, t := range torrents {
		items = append(items, domain.Item{
			Hash:          t.Hash,
			Name:          t.Name,
			SavePath:      t.SavePath,
			SizeTotal:     t.Size,
			SizeRemaining: t.AmountLeft,
			State:         mapState(t.State),
			AddedAt:       time.Unix(t.AddedOn, 0),
		})
	}

	return items, nil
}

// Pause stops the item identified by hash
func (c *Client) Pause(ctx context.Context, hash string) error {
	if err := c.qb.PauseCtx(ctx, []string{hash}); err != nil {
		return domain.NewCommandRejectedError(hash, err)
	}
	return nil
}

// Resume starts the item identified by hash
func (c *Client) Resume(ctx context.Context, hash string) error {
	if err := c.qb.ResumeCtx(ctx, []string{hash}); err != nil {
		return domain.NewCommandRejectedError(hash, err)
	}
	return nil
}
