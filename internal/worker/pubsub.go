package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/mobileid/portal/internal/suggestion"
)

// Message kinds, carried in the "kind" attribute.
const (
	KindSuggestion = suggestion.MessageKind
	KindProbe      = "probe"
)

// ErrUnhealthy is returned when a probe saw more fallback than live data.
var ErrUnhealthy = errors.New("upstream probe unhealthy")

// Dispatcher routes a message to the archiver or the probe job.
type Dispatcher struct {
	archiver *Archiver
	probe    *ProbeJob
	logger   zerolog.Logger
}

// NewDispatcher creates a dispatcher. Either job may be nil, in which case
// its messages are dropped.
func NewDispatcher(archiver *Archiver, probe *ProbeJob, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{archiver: archiver, probe: probe, logger: logger}
}

// Dispatch handles one message. Errors wrapping ErrMalformed must not be
// retried; any other error should be.
func (d *Dispatcher) Dispatch(ctx context.Context, kind string, data []byte) error {
	switch kind {
	case KindSuggestion:
		if d.archiver == nil {
			return fmt.Errorf("%w: archiving is not configured", ErrMalformed)
		}
		return d.archiver.Archive(ctx, data)
	case KindProbe:
		if d.probe == nil {
			return fmt.Errorf("%w: probing is not configured", ErrMalformed)
		}
		result := d.probe.Run(ctx)
		if !result.Healthy() {
			for _, f := range result.Failures {
				d.logger.Warn().
					Str("feed", f.Feed).
					Str("target", f.Target).
					Str("error", f.Error).
					Msg("feed served fallback data")
			}
			// Not retried: the next scheduled probe is soon enough.
			return fmt.Errorf("%w: %w (%d/%d checks served fallback data)", ErrMalformed, ErrUnhealthy, result.Fallback, result.Checks)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrMalformed, kind)
	}
}

// PubSubHandler receives worker messages from a Pub/Sub subscription.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	dispatcher       *Dispatcher
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Dispatcher       *Dispatcher
	Logger           zerolog.Logger
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Configure receive settings.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		dispatcher:       cfg.Dispatcher,
		logger:           cfg.Logger,
	}, nil
}

// Start processes messages until ctx is cancelled.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()
	kind := msg.Attributes["kind"]

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("kind", kind).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	err := h.dispatcher.Dispatch(ctx, kind, msg.Data)
	switch {
	case errors.Is(err, ErrMalformed):
		logger.Warn().Err(err).Msg("dropping message")
		msg.Ack() // Ack to prevent redelivery
		return
	case err != nil:
		logger.Error().Err(err).Msg("job failed")
		msg.Nack()
		return
	}

	logger.Info().
		Dur("duration", time.Since(startTime)).
		Msg("job completed successfully")

	msg.Ack()
}
