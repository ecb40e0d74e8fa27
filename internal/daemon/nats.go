package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/shipyard/internal/config"
	"git.home.luguber.info/inful/shipyard/internal/logfields"
	"git.home.luguber.info/inful/shipyard/internal/pipeline"
)

// RunMessage is the JSON payload published for each completed run.
type RunMessage struct {
	RunID      string    `json:"run_id"`
	Target     string    `json:"target"`
	Outcome    string    `json:"outcome"`
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// RunPublisher publishes run completions to a NATS JetStream subject.
type RunPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewRunPublisher connects to NATS and ensures the configured stream exists.
func NewRunPublisher(cfg config.NATSConfig) (*RunPublisher, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("run event publishing is disabled")
	}

	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.Stream,
		Subjects: []string{cfg.Subject},
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ensure stream %s: %w", cfg.Stream, err)
	}

	slog.Info("NATS run publisher initialized",
		logfields.URL(cfg.URL),
		slog.String("subject", cfg.Subject),
		slog.String("stream", cfg.Stream))

	return &RunPublisher{conn: conn, js: js, subject: cfg.Subject}, nil
}

// PublishRun publishes a completed run result.
func (p *RunPublisher) PublishRun(result *pipeline.RunResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg := RunMessage{
		RunID:      result.RunID,
		Target:     result.Target,
		Outcome:    string(result.Outcome),
		DurationMS: result.Duration.Milliseconds(),
		Timestamp:  time.Now(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal run message: %w", err)
	}

	if _, err := p.js.Publish(ctx, p.subject, data); err != nil {
		return fmt.Errorf("publish run message: %w", err)
	}

	slog.Debug("Published run event",
		logfields.RunID(result.RunID),
		logfields.Target(result.Target),
		logfields.Outcome(string(result.Outcome)))
	return nil
}

// Close closes the NATS connection.
func (p *RunPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
