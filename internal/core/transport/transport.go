// Package transport dispatches signed JSON requests to the SimpleGeo API.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mohammed-shakir/simplegeo-client/internal/core/endpoint"
	"github.com/mohammed-shakir/simplegeo-client/internal/core/observability"
	"github.com/mohammed-shakir/simplegeo-client/internal/logger"
)

const defaultUserAgent = "simplegeo-go/0.1"

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(string(e.Body))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	return fmt.Sprintf("%s %s: upstream status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

var ErrDecode = errors.New("decode response")

type Option func(*Transport)

func WithUserAgent(ua string) Option {
	return func(t *Transport) {
		if ua != "" {
			t.userAgent = ua
		}
	}
}

type Transport struct {
	rc        *resty.Client
	log       *slog.Logger
	userAgent string
	debug     atomic.Bool
	now       func() time.Time // for tests
}

// New builds a transport on top of hc, which is expected to sign requests.
func New(log *slog.Logger, hc *http.Client, opts ...Option) *Transport {
	if log == nil {
		log = logger.NewSlog(logger.Discard())
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	t := &Transport{
		log:       log,
		userAgent: defaultUserAgent,
		now:       time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	t.rc = resty.NewWithClient(hc).
		SetLogger(restyLogger{log: log}).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", t.userAgent)
	return t
}

// SetDebug only touches an atomic; each request reads it when it is built.
func (t *Transport) SetDebug(on bool) {
	t.debug.Store(on)
}

func (t *Transport) Debug() bool { return t.debug.Load() }

func (t *Transport) Get(ctx context.Context, path string, query url.Values) (any, error) {
	return t.do(ctx, http.MethodGet, path, query, nil)
}

func (t *Transport) Delete(ctx context.Context, path string, query url.Values) (any, error) {
	return t.do(ctx, http.MethodDelete, path, query, nil)
}

func (t *Transport) Put(ctx context.Context, path string, body any) (any, error) {
	return t.do(ctx, http.MethodPut, path, nil, body)
}

func (t *Transport) Post(ctx context.Context, path string, body any) (any, error) {
	return t.do(ctx, http.MethodPost, path, nil, body)
}

func (t *Transport) do(ctx context.Context, method, path string, query url.Values, body any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	reqID := logger.RequestID(ctx)
	if reqID == "" {
		ctx = logger.WithRequestID(ctx, "")
		reqID = logger.RequestID(ctx)
	}

	req := t.rc.R().
		SetContext(ctx).
		SetDebug(t.debug.Load()).
		SetHeader("X-Request-Id", reqID)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resource := Resource(path)
	start := t.now()
	resp, err := req.Execute(method, path)
	dur := t.now().Sub(start)
	if err != nil {
		observability.ObserveRequest(method, resource, 0, dur.Seconds())
		t.logDone(ctx, method, path, 0, dur, err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	observability.ObserveRequest(method, resource, status, dur.Seconds())
	if !resp.IsSuccess() {
		serr := &StatusError{Method: method, Path: path, StatusCode: status, Body: resp.Body()}
		t.logDone(ctx, method, path, status, dur, serr)
		return nil, serr
	}
	t.logDone(ctx, method, path, status, dur, nil)
	return decode(method, path, resp.Body())
}

func (t *Transport) logDone(ctx context.Context, method, path string, status int, dur time.Duration, err error) {
	if !t.debug.Load() {
		return
	}
	if err != nil {
		t.log.WarnContext(ctx, "simplegeo request failed",
			"method", method, "path", path, "status", status,
			"duration", dur.String(), "err", err)
		return
	}
	t.log.InfoContext(ctx, "simplegeo request done",
		"method", method, "path", path, "status", status,
		"duration", dur.String())
}

func decode(method, path string, b []byte) (any, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", method, path, ErrDecode, err)
	}
	return out, nil
}

// Resource returns the first path segment after the API version, used as a
// low-cardinality metrics label.
func Resource(path string) string {
	marker := "/" + endpoint.APIVersion + "/"
	if i := strings.Index(path, marker); i >= 0 {
		path = path[i+len(marker):]
	}
	path = strings.TrimLeft(path, "/")
	if i := strings.IndexAny(path, "/?"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSuffix(path, ".json")
	if path == "" {
		return "unknown"
	}
	return path
}

// resty only emits debug output when the debug flag is on, so it is logged at info.
type restyLogger struct {
	log *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
