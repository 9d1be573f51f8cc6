package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/infrastructure/resilience"
)

// Queue carries scan and conversion jobs from the api process to the
// worker over two core NATS subjects. Both sides share the "workers"
// queue group, so a horizontally scaled worker pool splits the load.
type Queue struct {
	conn           *nats.Conn
	scanSubject    string
	convertSubject string
	executor       *resilience.Executor
	logger         *slog.Logger
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
	Logger               *slog.Logger
}

func New(url, scanSubject, convertSubject string) (*Queue, error) {
	return NewWithOptions(url, scanSubject, convertSubject, Options{})
}

func NewWithOptions(url, scanSubject, convertSubject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(
		url,
		nats.Name("document-pipeline"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:           conn,
		scanSubject:    scanSubject,
		convertSubject: convertSubject,
		executor:       options.ResilienceExecutor,
		logger:         logger,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// jobMessage is the wire envelope for both subjects. The tenant rides
// along so the worker can load the record with the same scoping rules
// as any api call.
type jobMessage struct {
	TenantID string `json:"tenant_id"`
	ID       string `json:"id"`
}

func (q *Queue) PublishScanRequested(ctx context.Context, tenantID, jobID string) error {
	return q.publish(ctx, q.scanSubject, tenantID, jobID)
}

func (q *Queue) PublishConversionRequested(ctx context.Context, tenantID, documentID string) error {
	return q.publish(ctx, q.convertSubject, tenantID, documentID)
}

func (q *Queue) publish(ctx context.Context, subject, tenantID, id string) error {
	payload, err := json.Marshal(jobMessage{TenantID: tenantID, ID: id})
	if err != nil {
		return fmt.Errorf("marshal job message: %w", err)
	}

	call := func(_ context.Context) error {
		if err := q.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("nats publish %s: %w", subject, err)
		}
		return nil
	}

	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish."+subject, call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

func (q *Queue) SubscribeScanRequested(ctx context.Context, handler func(context.Context, string, string) error) error {
	return q.subscribe(ctx, q.scanSubject, handler)
}

func (q *Queue) SubscribeConversionRequested(ctx context.Context, handler func(context.Context, string, string) error) error {
	return q.subscribe(ctx, q.convertSubject, handler)
}

// subscribe blocks until ctx is done, then drains. A handler error is
// logged and dropped here: the handler already wrote the failure onto
// the owning record, and redelivering would only repeat it.
func (q *Queue) subscribe(ctx context.Context, subject string, handler func(context.Context, string, string) error) error {
	sub, err := q.conn.QueueSubscribe(subject, "workers", func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		var job jobMessage
		if err := json.Unmarshal(msg.Data, &job); err != nil {
			q.logger.Error("drop malformed job message", "subject", subject, "error", err)
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, job.TenantID, job.ID); err != nil {
			q.logger.Error("job handler failed", "subject", subject, "id", job.ID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}
