package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Join struct {
	User      string
	cancelled bool
}

func (j *Join) Cancelled() bool { return j.cancelled }

type Welcome struct {
	User string
}

// auto is registered through its On* methods.
type auto struct {
	seen []string
}

func (a *auto) OnJoin(ev *Join)       { a.seen = append(a.seen, "join:"+ev.User) }
func (a *auto) OnAnything(ev any)     { a.seen = append(a.seen, "any") }
func (a *auto) OnTwo(x, y string)     {}
func (a *auto) Unrelated(ev *Join)    {}
func (a *auto) OnWelcome(ev *Welcome) { a.seen = append(a.seen, "welcome:"+ev.User) }

// tagged names its handlers with options.
type tagged struct {
	log *[]string
}

func (t *tagged) EventHandlers() map[string]string {
	return map[string]string{
		"First":   "priority=lowest",
		"Last":    "priority=monitor",
		"Cancel":  "priority=low",
		"Strict":  "priority=normal,ignoreCancelled=false",
		"Greet":   "priority=high,postEvent",
		"Welcome": "",
	}
}

func (t *tagged) First(ev *Join)  { *t.log = append(*t.log, "first") }
func (t *tagged) Last(ev *Join)   { *t.log = append(*t.log, "last") }
func (t *tagged) Cancel(ev *Join) { *t.log = append(*t.log, "cancel"); ev.cancelled = true }
func (t *tagged) Strict(ev *Join) { *t.log = append(*t.log, "strict") }
func (t *tagged) Greet(ev *Join) *Welcome {
	*t.log = append(*t.log, "greet")
	return &Welcome{User: ev.User}
}
func (t *tagged) Welcome(ev *Welcome) { *t.log = append(*t.log, "welcome:"+ev.User) }

type failing struct{}

func (failing) OnJoin(ctx context.Context, ev *Join) error { return errors.New("join failed") }
func (failing) OnWelcome(ev *Welcome) error                { return errors.New("welcome failed") }

type looping struct{}

func (looping) EventHandlers() map[string]string {
	return map[string]string{"Again": "postEvent"}
}

func (looping) Again(ev *Join) *Join { return &Join{User: ev.User} }

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions("")
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)
	assert.Equal(t, Normal, opts.Priority)
	assert.False(t, opts.PostEvent)
	assert.True(t, opts.IgnoreCancelled)

	opts, err = ParseOptions("priority=HIGH, postEvent, ignoreCancelled=false")
	require.NoError(t, err)
	assert.Equal(t, Options{Priority: High}.Priority, opts.Priority)
	assert.True(t, opts.PostEvent)
	assert.False(t, opts.IgnoreCancelled)

	_, err = ParseOptions("priority=urgent")
	assert.ErrorContains(t, err, "unknown priority")
	_, err = ParseOptions("postEvent=maybe")
	assert.Error(t, err)
	_, err = ParseOptions("async")
	assert.ErrorContains(t, err, "unknown option")
}

func TestPriorityString(t *testing.T) {
	assert.Equal(t, "monitor", Monitor.String())
	assert.Equal(t, "priority(9)", Priority(9).String())
	assert.True(t, Lowest < Low && Low < Normal && Normal < High && High < Highest && Highest < Monitor)
}

func TestRegisterByConvention(t *testing.T) {
	bus := NewBus()
	a := &auto{}
	n, err := bus.Register(a)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, bus.Len())

	require.NoError(t, bus.Dispatch(context.Background(), &Join{User: "ann"}))
	assert.ElementsMatch(t, []string{"join:ann", "any"}, a.seen)

	a.seen = nil
	require.NoError(t, bus.Dispatch(context.Background(), &Welcome{User: "bob"}))
	assert.ElementsMatch(t, []string{"welcome:bob", "any"}, a.seen)
}

func TestDispatchOrderCancelAndPost(t *testing.T) {
	var log []string
	bus := NewBus()
	n, err := bus.Register(&tagged{log: &log})
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	require.NoError(t, bus.Dispatch(context.Background(), &Join{User: "cy"}))
	// Strict is skipped once Cancel marks the event; the rest still run.
	assert.Equal(t, []string{"first", "cancel", "greet", "welcome:cy", "last"}, log)
}

func TestDispatchAggregatesErrors(t *testing.T) {
	var log []string
	bus := NewBus()
	_, err := bus.Register(failing{})
	require.NoError(t, err)
	_, err = bus.Register(&tagged{log: &log})
	require.NoError(t, err)

	err = bus.Dispatch(context.Background(), &Join{User: "dee"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "join failed")
	assert.ErrorContains(t, err, "welcome failed")
	assert.Contains(t, log, "last")
}

func TestPostedEventDepth(t *testing.T) {
	bus := NewBus()
	_, err := bus.Register(looping{})
	require.NoError(t, err)
	err = bus.Dispatch(context.Background(), &Join{User: "eve"})
	assert.ErrorContains(t, err, "nested deeper")
}

type badTag struct{}

func (badTag) EventHandlers() map[string]string { return map[string]string{"Handle": "priority=soon"} }
func (badTag) Handle(ev *Join)                  {}

type missing struct{}

func (missing) EventHandlers() map[string]string { return map[string]string{"Nope": ""} }

type wide struct{}

func (wide) EventHandlers() map[string]string { return map[string]string{"Both": ""} }
func (wide) Both(a, b *Join)                  {}

func TestRegisterErrors(t *testing.T) {
	bus := NewBus()
	_, err := bus.Register(nil)
	assert.Error(t, err)
	_, err = bus.Register(badTag{})
	assert.ErrorContains(t, err, "unknown priority")
	_, err = bus.Register(missing{})
	assert.ErrorContains(t, err, "has no method Nope")
	_, err = bus.Register(wide{})
	assert.ErrorContains(t, err, "exactly one argument")
	assert.Zero(t, bus.Len())
}
