package recorder

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/specialistvlad/hypermdo/internal/ctxlog"
	"github.com/specialistvlad/hypermdo/internal/solver"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// SocketIOConfig configures a socket.io recorder.
type SocketIOConfig struct {
	URL       string
	Namespace string
	// Event prefixes the emitted event names: <Event>:start, <Event>:iteration
	// and <Event>:finish.
	Event              string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

const (
	defaultEvent          = "hypermdo"
	defaultConnectTimeout = 15 * time.Second
)

// SocketIO streams runs to a socket.io server as they happen.
type SocketIO struct {
	io      *socket.Socket
	event   string
	current string
}

// DialSocketIO connects to the server and waits for the connection to be
// accepted, failing after cfg.Timeout.
func DialSocketIO(ctx context.Context, cfg SocketIOConfig) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("recorder", "socketio", "url", cfg.URL)
	if cfg.Event == "" {
		cfg.Event = defaultEvent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultConnectTimeout
	}

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("URL '%s' needs a scheme and a host", cfg.URL)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	connected := make(chan error, 1)
	notify := func(err error) {
		select {
		case connected <- err:
		default:
		}
	}
	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Recorder connected.", "sid", io.Id())
		notify(nil)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		notify(err)
	})
	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketIO{io: io, event: cfg.Event}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(cfg.Timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", cfg.Timeout)
	}
}

func (s *SocketIO) emit(kind string, payload map[string]any) error {
	if !s.io.Connected() {
		return fmt.Errorf("socket.io recorder is not connected")
	}
	s.io.Emit(s.event+":"+kind, payload)
	return nil
}

func (s *SocketIO) Start(_ context.Context, info Info) error {
	s.current = info.Case
	return s.emit("start", map[string]any{
		"case":      info.Case,
		"started":   info.Started.Format(time.RFC3339Nano),
		"variables": info.Variables,
	})
}

func (s *SocketIO) Iteration(_ context.Context, it solver.Iteration) error {
	return s.emit("iteration", map[string]any{
		"case":   s.current,
		"system": it.System,
		"solver": it.Solver,
		"iter":   it.Iter,
		"norm":   jsonNumber(it.Norm),
		"status": it.Status.String(),
	})
}

func (s *SocketIO) Finish(_ context.Context, c Case) error {
	values := make(map[string]any, len(c.Values))
	for k, v := range c.Values {
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = jsonNumber(x)
		}
		values[k] = out
	}
	payload := map[string]any{
		"case":        c.Name,
		"status":      c.Status,
		"iterations":  c.Iterations,
		"duration_ms": c.Duration.Milliseconds(),
		"values":      values,
	}
	if c.Failed() {
		payload["error"] = c.Error
	}
	return s.emit("finish", payload)
}

// Close disconnects from the server.
func (s *SocketIO) Close() error {
	s.io.Disconnect()
	return nil
}

// jsonNumber maps values JSON cannot carry to nil.
func jsonNumber(x float64) any {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return x
}
