package event

import (
	"go.uber.org/zap"
)

// LoggingHandler logs all events
type LoggingHandler struct {
	logger *zap.Logger
}

// NewLoggingHandler creates a new LoggingHandler
func NewLoggingHandler(logger *zap.Logger) *LoggingHandler {
	return &LoggingHandler{logger: logger}
}

// Handle logs the event
func (h *LoggingHandler) Handle(event DomainEvent) error {
	switch e := event.(type) {
	case ItemAdded:
		h.logger.Info("item added",
			zap.String("downloader", e.Downloader),
			zap.String("hash", e.Hash),
		)
	case ItemsPaused:
		h.logger.Info("items paused for low space",
			zap.String("downloader", e.Downloader),
			zap.String("directory", e.Directory),
			zap.Strings("hashes", e.Hashes),
			zap.Int64("free_bytes", e.FreeBytes),
			zap.Int64("deficit", e.Deficit),
			zap.Int64("estimated_saved", e.EstimatedSaved),
		)
	case DirectoryCritical:
		h.logger.Warn("directory critical: pause victims exhausted",
			zap.String("downloader", e.Downloader),
			zap.String("directory", e.Directory),
			zap.Int64("free_bytes", e.FreeBytes),
			zap.Int64("deficit", e.Deficit),
			zap.Int64("estimated_saved", e.EstimatedSaved),
		)
	case ItemsResumed:
		h.logger.Info("items resumed",
			zap.String("downloader", e.Downloader),
			zap.String("directory", e.Directory),
			zap.Strings("hashes", e.Hashes),
			zap.Int64("headroom", e.Headroom),
		)
	case DeadlockBroken:
		h.logger.Warn("deadlock broken by force-resume",
			zap.String("downloader", e.Downloader),
			zap.String("directory", e.Directory),
			zap.String("hash", e.Hash),
			zap.Int64("size_remaining", e.SizeRemaining),
			zap.Int("stalled_cycles", e.StalledCycles),
		)
	case CycleCompleted:
		h.logger.Debug("cycle completed",
			zap.String("downloader", e.Downloader),
			zap.Int("paused", e.Paused),
			zap.Int("resumed", e.Resumed),
			zap.Bool("skipped", e.Skipped),
			zap.Duration("duration", e.Duration),
		)
	default:
		h.logger.Debug("domain event",
			zap.String("event", event.EventName()),
			zap.Time("occurred_at", event.OccurredAt()),
		)
	}
	return nil
}

// HandledEvents returns the events this handler handles
func (h *LoggingHandler) HandledEvents() []string {
	return []string{"*"} // Handle all events
}
