package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/rl1809/cart-inventory/internal/core/domain"
	"github.com/rl1809/cart-inventory/internal/core/service"
	"github.com/rl1809/cart-inventory/internal/port"
)

const (
	msgInternalError    = "internal error"
	msgDuplicateRequest = "duplicate request"
	msgItemNotFound     = "Item not found"
)

var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrInvalidArgument = errors.New("invalid arguments")
)

// Call is one tool invocation. UserID and RequestID come from the transport,
// never from Arguments.
type Call struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	UserID    string          `json:"-"`
	RequestID string          `json:"-"`
}

type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// plainText is rendered verbatim instead of as JSON.
type plainText string

func textResult(text string, isError bool) ToolResult {
	return ToolResult{Content: []Content{{Type: "text", Text: text}}, IsError: isError}
}

func errorResult(msg string) ToolResult {
	return textResult("Error: "+msg, true)
}

type Option func(*Dispatcher)

func WithIdempotency(store port.IdempotencyStore) Option {
	return func(d *Dispatcher) { d.idem = store }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) { d.log = logger }
}

// WithLowStockThreshold sets the getLowStockItems default.
func WithLowStockThreshold(n int) Option {
	return func(d *Dispatcher) { d.lowStockThreshold = n }
}

// Dispatcher routes tool calls to the engines and renders their outcome.
type Dispatcher struct {
	cart      port.CartEngine
	inventory port.InventoryEngine
	idem      port.IdempotencyStore
	log       zerolog.Logger
	validate  *validator.Validate
	tools     map[string]toolDef

	lowStockThreshold int
}

func NewDispatcher(cart port.CartEngine, inventory port.InventoryEngine, opts ...Option) *Dispatcher {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	d := &Dispatcher{
		cart:              cart,
		inventory:         inventory,
		log:               zerolog.Nop(),
		validate:          v,
		tools:             make(map[string]toolDef),
		lowStockThreshold: service.DefaultLowStockThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	for _, t := range toolDefs() {
		d.tools[t.name] = t
	}
	return d
}

// ListTools returns the registered tools sorted by name.
func (d *Dispatcher) ListTools() []ToolInfo {
	out := make([]ToolInfo, 0, len(d.tools))
	for _, t := range d.tools {
		out = append(out, ToolInfo{Name: t.name, Description: t.description})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Call runs the tool. The returned error is non-nil only for an unknown tool;
// every other failure is rendered into the ToolResult.
func (d *Dispatcher) Call(ctx context.Context, call Call) (ToolResult, error) {
	t, ok := d.tools[call.Tool]
	if !ok {
		return errorResult(fmt.Sprintf("%s: %s", ErrUnknownTool, call.Tool)), ErrUnknownTool
	}

	run, err := t.bind(d, call)
	if err != nil {
		return d.renderError(call, err), nil
	}

	claimed := false
	if t.mutating && call.RequestID != "" && d.idem != nil {
		first, err := d.idem.Claim(ctx, idempotencyKey(call))
		if err != nil {
			d.log.Error().Err(err).Str("tool", call.Tool).Str("request_id", call.RequestID).Msg("claim request id")
			return errorResult(msgInternalError), nil
		}
		if !first {
			return render(domain.Soft(msgDuplicateRequest))
		}
		claimed = true
	}

	out, err := run(ctx)
	if err != nil {
		if claimed {
			d.release(ctx, call)
		}
		return d.renderError(call, err), nil
	}

	return render(out)
}

func idempotencyKey(call Call) string {
	return call.UserID + ":" + call.Tool + ":" + call.RequestID
}

// release frees the request id of a failed call so it can be resubmitted.
func (d *Dispatcher) release(ctx context.Context, call Call) {
	if err := d.idem.Release(context.WithoutCancel(ctx), idempotencyKey(call)); err != nil {
		d.log.Warn().Err(err).Str("tool", call.Tool).Str("request_id", call.RequestID).Msg("release request id")
	}
}

func render(v any) (ToolResult, error) {
	if text, ok := v.(plainText); ok {
		return textResult(string(text), false), nil
	}

	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(msgInternalError), nil
	}
	return textResult(string(body), false), nil
}

// expected errors are shown to the caller; anything else is logged and hidden.
var expected = []error{
	ErrInvalidArgument,
	service.ErrMissingUser,
	service.ErrItemNotFound,
	service.ErrDuplicateItem,
	service.ErrInvalidValue,
	service.ErrConcurrentModification,
}

func (d *Dispatcher) renderError(call Call, err error) ToolResult {
	for _, target := range expected {
		if errors.Is(err, target) {
			return errorResult(err.Error())
		}
	}

	d.log.Error().Err(err).
		Str("tool", call.Tool).
		Str("user_id", call.UserID).
		Str("request_id", call.RequestID).
		Msg("tool call failed")
	return errorResult(msgInternalError)
}

// decode strictly parses raw into args and validates it.
func (d *Dispatcher) decode(raw json.RawMessage, args any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}

	if err := d.validate.Struct(args); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("%w: %s", ErrInvalidArgument, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}

	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), strings.SplitN(fe.Namespace(), ".", 2)[0]+".")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
