// Package stream ingests live samples from a JSON WebSocket feed.
package stream

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rxtech-lab/argo-consolidator/internal/logger"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"go.uber.org/zap"
)

const maxMessageSize = 64 * 1024

// Feeder receives decoded samples. *pipeline.Pipeline implements it.
type Feeder interface {
	Feed(sample types.MarketData) error
}

// Config configures an Ingest.
type Config struct {
	// URL of the feed, e.g. "ws://localhost:9001/ws".
	URL string
	// ReconnectDelay is the first delay before reconnecting. Defaults to 2 seconds.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the exponential backoff. Defaults to 30 seconds.
	MaxReconnectDelay time.Duration
}

func (c *Config) defaults() {
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = 2 * time.Second
	}

	if c.MaxReconnectDelay == 0 {
		c.MaxReconnectDelay = 30 * time.Second
	}
}

// Ingest reads frames from the feed and hands every decoded sample to a Feeder.
type Ingest struct {
	cfg    Config
	feeder Feeder
	logger *logger.Logger

	received atomic.Int64
	rejected atomic.Int64
}

// NewIngest creates an Ingest.
func NewIngest(cfg Config, feeder Feeder, log *logger.Logger) (*Ingest, error) {
	if cfg.URL == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "stream url is required")
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	cfg.defaults()

	return &Ingest{cfg: cfg, feeder: feeder, logger: log}, nil
}

// Received returns the number of samples fed so far, accepted or not.
func (ing *Ingest) Received() int64 {
	return ing.received.Load()
}

// Rejected returns the number of frames that could not be decoded or fed.
func (ing *Ingest) Rejected() int64 {
	return ing.rejected.Load()
}

// Run reads the feed until ctx is cancelled, reconnecting with exponential
// backoff after every disconnect. It returns nil once ctx is done.
func (ing *Ingest) Run(ctx context.Context) error {
	delay := ing.cfg.ReconnectDelay

	for {
		connected, err := ing.runOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}

		wait := ing.backoff(delay, connected)
		ing.logger.Warn("Stream disconnected",
			zap.String("url", ing.cfg.URL),
			zap.Duration("retry_in", wait),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}

		delay = min(wait*2, ing.cfg.MaxReconnectDelay)
	}
}

// backoff returns the wait before the next dial. A session that connected starts
// over from ReconnectDelay.
func (ing *Ingest) backoff(delay time.Duration, connected bool) time.Duration {
	if connected {
		return ing.cfg.ReconnectDelay
	}

	return delay
}

// runOnce makes a single connection and reads until disconnect or ctx cancel.
// It reports whether the dial succeeded.
func (ing *Ingest) runOnce(ctx context.Context) (bool, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, ing.cfg.URL, nil)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to connect to stream", err)
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	ing.logger.Info("Stream connected", zap.String("url", ing.cfg.URL))

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"))
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}

		ing.handle(raw)
	}
}

func (ing *Ingest) handle(raw []byte) {
	sample, err := Decode(raw)
	if err != nil {
		ing.rejected.Add(1)
		ing.logger.Warn("Skipping stream message", zap.ByteString("raw", raw), zap.Error(err))

		return
	}

	ing.received.Add(1)

	if err := ing.feeder.Feed(sample); err != nil {
		ing.rejected.Add(1)

		if errors.IsLateDataError(err) {
			ing.logger.Debug("Late stream sample", zap.String("instrument", sample.Instrument.String()), zap.Error(err))

			return
		}

		ing.logger.Warn("Failed to feed stream sample", zap.String("instrument", sample.Instrument.String()), zap.Error(err))
	}
}
