// Package event dispatches events to handler methods discovered through the
// member resolver.
package event

import (
	"fmt"
	"strconv"
	"strings"
)

// Priority orders handlers of the same event. Lower priorities run first;
// Monitor handlers run last and should only observe.
type Priority int

const (
	Lowest Priority = iota
	Low
	Normal
	High
	Highest
	Monitor
)

var priorityNames = map[Priority]string{
	Lowest:  "lowest",
	Low:     "low",
	Normal:  "normal",
	High:    "high",
	Highest: "highest",
	Monitor: "monitor",
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return "priority(" + strconv.Itoa(int(p)) + ")"
}

// ParsePriority parses a priority name, case insensitively.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range priorityNames {
		if name == s {
			return p, nil
		}
	}
	return Normal, fmt.Errorf("event: unknown priority %q", s)
}

// Options configure one handler.
type Options struct {
	Priority Priority

	// PostEvent dispatches the handler's non-nil result as a new event.
	PostEvent bool

	// IgnoreCancelled still invokes the handler for cancelled events.
	IgnoreCancelled bool
}

// DefaultOptions returns the options of a handler with no explicit tag.
func DefaultOptions() Options {
	return Options{Priority: Normal, IgnoreCancelled: true}
}

// ParseOptions reads a comma separated option tag such as
// "priority=high,postEvent,ignoreCancelled=false". A bare boolean option
// means true. Unset options keep their defaults.
func ParseOptions(tag string) (Options, error) {
	opts := DefaultOptions()
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, hasValue := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "priority":
			p, err := ParsePriority(value)
			if err != nil {
				return opts, err
			}
			opts.Priority = p
		case "postEvent", "ignoreCancelled":
			b := true
			if hasValue {
				var err error
				if b, err = strconv.ParseBool(value); err != nil {
					return opts, fmt.Errorf("event: option %s: %w", key, err)
				}
			}
			if key == "postEvent" {
				opts.PostEvent = b
			} else {
				opts.IgnoreCancelled = b
			}
		default:
			return opts, fmt.Errorf("event: unknown option %q", key)
		}
	}
	return opts, nil
}
