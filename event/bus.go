package event

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/deepnoodle-ai/mirror/descriptor"
	"github.com/deepnoodle-ai/mirror/types"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

// maxPostDepth bounds chains of events posted by handlers.
const maxPostDepth = 16

// Listener is implemented by listeners that name their handlers explicitly.
// The map goes from method name to option tag (see ParseOptions).
// Listeners without it have every public method named On* taking exactly
// one argument registered with default options.
type Listener interface {
	EventHandlers() map[string]string
}

// Cancellable is implemented by events that can be cancelled.
type Cancellable interface {
	Cancelled() bool
}

type handler struct {
	method *descriptor.Method
	param  types.Type
	opts   Options
}

// Bus delivers events to registered handlers. It is safe for concurrent use.
type Bus struct {
	mu       sync.RWMutex
	handlers []*handler
	log      zerolog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Bus) {
		b.log = log
	}
}

// NewBus returns a bus with no handlers.
func NewBus(opts ...Option) *Bus {
	b := &Bus{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register discovers the handlers of listener and returns how many were
// added.
func (b *Bus) Register(listener any) (int, error) {
	d, err := descriptor.Of(listener)
	if err != nil {
		return 0, err
	}
	var found []*handler
	if l, ok := listener.(Listener); ok {
		names := make([]string, 0, len(l.EventHandlers()))
		for name := range l.EventHandlers() {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			opts, err := ParseOptions(l.EventHandlers()[name])
			if err != nil {
				return 0, fmt.Errorf("event: handler %s: %w", name, err)
			}
			m, ok := d.MethodByName(name)
			if !ok {
				return 0, fmt.Errorf("event: %s has no method %s", d.Type(), name)
			}
			h, err := newHandler(m, opts)
			if err != nil {
				return 0, err
			}
			found = append(found, h)
		}
	} else {
		for _, m := range d.Methods() {
			if !strings.HasPrefix(m.Name(), "On") || len(m.ParamTypes()) != 1 {
				continue
			}
			h, err := newHandler(m, DefaultOptions())
			if err != nil {
				return 0, err
			}
			found = append(found, h)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, found...)
	sort.SliceStable(b.handlers, func(i, j int) bool {
		return b.handlers[i].opts.Priority < b.handlers[j].opts.Priority
	})
	for _, h := range found {
		b.log.Debug().
			Str("listener", d.Type().String()).
			Str("method", h.method.Name()).
			Str("event", h.param.String()).
			Str("priority", h.opts.Priority.String()).
			Msg("handler registered")
	}
	return len(found), nil
}

func newHandler(m *descriptor.Method, opts Options) (*handler, error) {
	params := m.ParamTypes()
	if len(params) != 1 {
		return nil, fmt.Errorf("event: handler %s must take exactly one argument", m)
	}
	return &handler{method: m, param: params[0], opts: opts}, nil
}

// Dispatch delivers ev to every handler whose parameter accepts it, in
// priority order. Handler errors do not stop delivery; they are returned
// together once all handlers ran.
func (b *Bus) Dispatch(ctx context.Context, ev any) error {
	var result *multierror.Error
	b.dispatch(ctx, ev, 0, &result)
	return result.ErrorOrNil()
}

func (b *Bus) dispatch(ctx context.Context, ev any, depth int, result **multierror.Error) {
	if depth > maxPostDepth {
		*result = multierror.Append(*result, fmt.Errorf("event: posted events nested deeper than %d", maxPostDepth))
		return
	}
	b.mu.RLock()
	handlers := append([]*handler(nil), b.handlers...)
	b.mu.RUnlock()

	evType := types.TypeOf(ev)
	for _, h := range handlers {
		if !evType.AssignableTo(h.param) {
			continue
		}
		if c, ok := ev.(Cancellable); ok && c.Cancelled() && !h.opts.IgnoreCancelled {
			continue
		}
		out, err := h.method.Invoke(ctx, ev)
		if err != nil {
			b.log.Warn().Err(err).Str("method", h.method.Name()).Msg("handler failed")
			*result = multierror.Append(*result, err)
			continue
		}
		if h.opts.PostEvent && out != nil {
			b.dispatch(ctx, out, depth+1, result)
		}
	}
}

// Len returns the number of registered handlers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
