package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/leadrelay/internal/leads"
	"github.com/wolfman30/leadrelay/internal/observability/metrics"
	"github.com/wolfman30/leadrelay/pkg/logging"
)

var dispatchTracer = otel.Tracer("leadrelay.internal.notify")

// Results maps channel names to their outcome.
type Results map[string]Result

// Service fans a lead out to every configured channel.
type Service struct {
	channels []Channel
	timeout  time.Duration
	metrics  *metrics.LeadMetrics
	logger   *logging.Logger
}

// NewService creates a notification service. A zero timeout disables the
// dispatch deadline; transports still apply their own client timeouts.
func NewService(channels []Channel, timeout time.Duration, m *metrics.LeadMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		channels: channels,
		timeout:  timeout,
		metrics:  m,
		logger:   logger,
	}
}

// Dispatch sends lead over every channel concurrently and waits for all of
// them. A failing channel never affects its siblings. If ctx is already done
// nothing is sent and ctx.Err() is returned. Sends that have started are not
// cancelled with ctx; they run until they finish or the dispatch timeout hits.
func (s *Service) Dispatch(ctx context.Context, lead *leads.Lead) (Results, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sendCtx := context.WithoutCancel(ctx)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(sendCtx, s.timeout)
		defer cancel()
	}

	out := make([]Result, len(s.channels))
	var wg sync.WaitGroup
	for i, ch := range s.channels {
		wg.Add(1)
		go func(i int, ch Channel) {
			defer wg.Done()
			out[i] = s.send(sendCtx, ch, lead)
		}(i, ch)
	}
	wg.Wait()

	results := make(Results, len(s.channels))
	for i, ch := range s.channels {
		results[ch.Name()] = out[i]
	}
	return results, nil
}

func (s *Service) send(ctx context.Context, ch Channel, lead *leads.Lead) (result Result) {
	name := ch.Name()
	ctx, span := dispatchTracer.Start(ctx, "notify.channel.send", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("leadrelay.channel", name),
		attribute.String("leadrelay.lead_id", lead.ID),
	)

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = Failed(fmt.Errorf("notify: %s channel panicked: %v", name, r))
		}
		elapsed := time.Since(start)
		s.metrics.ObserveDispatch(name, string(result.Status), elapsed.Seconds())
		span.SetAttributes(attribute.String("leadrelay.status", string(result.Status)))
		s.logResult(name, lead, result, elapsed)
		if result.Status == StatusFailed {
			span.RecordError(result.Err)
			span.SetStatus(codes.Error, result.Error())
		}
	}()

	return ch.Send(ctx, lead)
}

func (s *Service) logResult(channel string, lead *leads.Lead, result Result, elapsed time.Duration) {
	attrs := []any{"channel", channel, "lead_id", lead.ID, "status", result.Status, "duration_ms", elapsed.Milliseconds()}
	switch result.Status {
	case StatusDelivered:
		s.logger.Info("notify: channel delivered", attrs...)
	case StatusSkipped:
		s.logger.Warn("notify: channel skipped", append(attrs, "reason", result.Reason)...)
	default:
		s.logger.Error("notify: channel failed", append(attrs, "error", result.Error())...)
	}
}
