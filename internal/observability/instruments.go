package observability

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const scope = "github.com/rl1809/cart-inventory/internal/observability"

const (
	OutcomeOK    = "ok"
	OutcomeSoft  = "soft"
	OutcomeError = "error"
)

// Instruments is shared by the engine decorators.
type Instruments struct {
	log     zerolog.Logger
	tracer  trace.Tracer
	calls   metric.Int64Counter
	latency metric.Float64Histogram
}

func NewInstruments(logger zerolog.Logger, tp trace.TracerProvider, mp metric.MeterProvider) (*Instruments, error) {
	meter := mp.Meter(scope)

	calls, err := meter.Int64Counter("cartinventory.engine.calls",
		metric.WithDescription("Engine operations by outcome"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram("cartinventory.engine.duration",
		metric.WithDescription("Engine operation latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Instruments{
		log:     logger,
		tracer:  tp.Tracer(scope),
		calls:   calls,
		latency: latency,
	}, nil
}

type call struct {
	in    *Instruments
	op    string
	attrs []attribute.KeyValue
	span  trace.Span
	start time.Time
}

func (in *Instruments) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, *call) {
	ctx, span := in.tracer.Start(ctx, "engine."+op, trace.WithAttributes(attrs...))
	return ctx, &call{in: in, op: op, attrs: attrs, span: span, start: time.Now()}
}

// end records the call. soft marks a Result with Success=false.
func (c *call) end(ctx context.Context, err error, soft bool) {
	defer c.span.End()
	elapsed := time.Since(c.start)

	outcome := OutcomeOK
	switch {
	case err != nil:
		outcome = OutcomeError
		c.span.RecordError(err)
		c.span.SetStatus(codes.Error, err.Error())
	case soft:
		outcome = OutcomeSoft
	}

	set := metric.WithAttributes(attribute.String("op", c.op), attribute.String("outcome", outcome))
	c.in.calls.Add(ctx, 1, set)
	c.in.latency.Record(ctx, elapsed.Seconds(), set)

	event := c.in.log.Debug()
	if err != nil {
		event = c.in.log.Warn().Err(err)
	}
	for _, kv := range c.attrs {
		event = event.Str(string(kv.Key), kv.Value.Emit())
	}
	event.Str("op", c.op).Dur("duration", elapsed).Str("outcome", outcome).Msg("engine call")
}

func userAttr(userID string) attribute.KeyValue {
	return attribute.String("user_id", userID)
}

func itemAttr(itemID string) attribute.KeyValue {
	return attribute.String("item_id", itemID)
}
