// Package dbusclient adapts github.com/godbus/dbus/v5 into the shape
// the DBus condition and event variants need: a method call returning a
// generic reply tuple, and a signal subscription delivering the same
// shape to a channel. Grounded on original_source's dbus_cond.rs /
// dbus_event.rs (zbus in the original; godbus/dbus/v5 is the Go
// ecosystem's equivalent).
package dbusclient

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

// Bus selects which well-known bus to connect to.
type Bus string

const (
	BusSession Bus = "session"
	BusSystem  Bus = "system"
)

// Client wraps a single connection, opened by Connect and reused for
// every call made through this Client.
type Client struct {
	conn *dbus.Conn
	bus  Bus
}

func Connect(bus Bus) (*Client, error) {
	var conn *dbus.Conn
	var err error
	switch bus {
	case BusSystem:
		conn, err = dbus.ConnectSystemBus()
	default:
		conn, err = dbus.ConnectSessionBus()
	}
	if err != nil {
		return nil, fmt.Errorf("dbus connect (%s): %w", bus, err)
	}
	return &Client{conn: conn, bus: bus}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

// Call invokes method on object exported by service, passing params
// positionally, and returns the reply body as a generic []any tuple
// (one entry per returned value), matching the index-path addressing
// checks.EvaluateParamChecks expects.
func (c *Client) Call(ctx context.Context, service, object, iface, method string, params []any) ([]any, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}
	obj := c.conn.Object(service, dbus.ObjectPath(object))
	call := obj.CallWithContext(ctx, iface+"."+method, 0, params...)
	if call.Err != nil {
		return nil, fmt.Errorf("dbus call %s.%s: %w", iface, method, call.Err)
	}
	return normalizeBody(call.Body), nil
}

// Signal is one received signal instance normalized for checking.
type Signal struct {
	Path string
	Body []any
}

// Subscribe adds a match rule for iface/member (optionally scoped to
// path) and streams matching signals until ctx is cancelled. The
// returned channel is closed on cancellation or connection error.
func (c *Client) Subscribe(ctx context.Context, iface, member, path string) (<-chan Signal, error) {
	rule := fmt.Sprintf("type='signal',interface='%s',member='%s'", iface, member)
	if path != "" {
		rule += fmt.Sprintf(",path='%s'", path)
	}
	if err := c.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.AddMatch", 0, rule).Err; err != nil {
		return nil, fmt.Errorf("dbus add match: %w", err)
	}

	raw := make(chan *dbus.Signal, 16)
	c.conn.Signal(raw)
	out := make(chan Signal, 16)

	go func() {
		defer close(out)
		defer c.conn.RemoveSignal(raw)
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-raw:
				if !ok {
					return
				}
				if sig.Name != iface+"."+member {
					continue
				}
				out <- Signal{Path: string(sig.Path), Body: normalizeBody(sig.Body)}
			}
		}
	}()
	return out, nil
}

func normalizeBody(body []any) []any {
	out := make([]any, len(body))
	for i, v := range body {
		out[i] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case dbus.Variant:
		return normalizeValue(t.Value())
	case []dbus.Variant:
		l := make([]any, len(t))
		for i, e := range t {
			l[i] = normalizeValue(e)
		}
		return l
	case map[string]dbus.Variant:
		d := make(map[string]any, len(t))
		for k, e := range t {
			d[k] = normalizeValue(e.Value())
		}
		return d
	}
	return v
}

// DefaultTimeout bounds a synchronous method call when the caller's
// context carries no deadline (e.g. a bare context.Background()).
const DefaultTimeout = 10 * time.Second
