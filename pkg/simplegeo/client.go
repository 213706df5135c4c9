package simplegeo

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/mohammed-shakir/simplegeo-client/internal/core/endpoint"
	"github.com/mohammed-shakir/simplegeo-client/internal/core/httpclient"
	"github.com/mohammed-shakir/simplegeo-client/internal/core/model"
	"github.com/mohammed-shakir/simplegeo-client/internal/core/transport"
	"github.com/mohammed-shakir/simplegeo-client/internal/logger"
)

// Connection is the authenticated transport a Client dispatches through.
type Connection interface {
	Get(ctx context.Context, path string, query url.Values) (any, error)
	Put(ctx context.Context, path string, body any) (any, error)
	Post(ctx context.Context, path string, body any) (any, error)
	Delete(ctx context.Context, path string, query url.Values) (any, error)
	SetDebug(on bool)
}

// ConnectionFactory builds a Connection bound to a credential pair.
type ConnectionFactory func(token, secret string) Connection

type Option func(*Client)

func WithRealm(realm string) Option {
	return func(c *Client) { c.resolver = endpoint.New(realm) }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithHTTPClient sets the unsigned base client that requests are signed on top of.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.base = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.base = httpclient.NewOutbound(d) }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func WithDebug(on bool) Option {
	return func(c *Client) { c.debug = on }
}

func WithConnectionFactory(f ConnectionFactory) Option {
	return func(c *Client) {
		if f != nil {
			c.newConn = f
		}
	}
}

type Client struct {
	mu        sync.RWMutex
	resolver  endpoint.Resolver
	log       *slog.Logger
	base      *http.Client
	userAgent string
	newConn   ConnectionFactory
	conn      Connection
	debug     bool
}

// New returns a client with no connection; call SetCredentials before use.
func New(opts ...Option) *Client {
	c := &Client{
		resolver: endpoint.Default,
	}
	c.newConn = c.defaultConnection
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		// silent at info until debug is turned on
		zl := logger.Build(logger.Config{Level: "info", Component: "simplegeo"}, os.Stderr)
		c.log = logger.NewSlog(&zl)
	}
	return c
}

// NewWithCredentials returns a client that is connected from the start.
func NewWithCredentials(token, secret string, opts ...Option) *Client {
	c := New(opts...)
	c.SetCredentials(token, secret)
	return c
}

func (c *Client) defaultConnection(token, secret string) Connection {
	base := c.base
	if base == nil {
		base = httpclient.NewOutbound(0)
	}
	return transport.New(c.log, httpclient.NewSigned(base, token, secret),
		transport.WithUserAgent(c.userAgent))
}

// SetCredentials replaces the active connection, carrying the debug flag over.
func (c *Client) SetCredentials(token, secret string) {
	conn := c.newConn(token, secret)

	c.mu.Lock()
	defer c.mu.Unlock()
	conn.SetDebug(c.debug)
	c.conn = conn
}

// SetDebug also applies to the active connection, if any.
func (c *Client) SetDebug(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debug = on
	if c.conn != nil {
		c.conn.SetDebug(on)
	}
}

func (c *Client) Debug() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.debug
}

func (c *Client) Resolver() Resolver { return c.resolver }

func (c *Client) connection() (Connection, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.conn == nil {
		return nil, ErrNoConnection
	}
	return c.conn, nil
}

func (c *Client) AddRecord(ctx context.Context, r Record) (any, error) {
	if err := r.Validate(); err != nil {
		return nil, &ValidationError{Err: err}
	}
	return c.Put(ctx, c.resolver.Record(r.Layer, r.ID), r)
}

func (c *Client) DeleteRecord(ctx context.Context, layer, id string) (any, error) {
	return c.Delete(ctx, c.resolver.Record(layer, id), nil)
}

func (c *Client) GetRecord(ctx context.Context, layer, id string) (Record, error) {
	v, err := c.Get(ctx, c.resolver.Record(layer, id), nil)
	if err != nil {
		return Record{}, err
	}
	rec, err := model.ParseRecord(v)
	if err != nil {
		return Record{}, fmt.Errorf("get record %s/%s: %w", layer, id, err)
	}
	return rec, nil
}

// AddRecords posts the records as one FeatureCollection, in the given order.
func (c *Client) AddRecords(ctx context.Context, layer string, records []Record) (any, error) {
	return c.Post(ctx, c.resolver.AddRecords(layer), model.NewFeatureCollection(records))
}

// GetRecords returns the features of the response, or an empty slice if it has none.
func (c *Client) GetRecords(ctx context.Context, layer string, ids IDs) ([]any, error) {
	v, err := c.Get(ctx, c.resolver.Records(layer, ids), nil)
	if err != nil {
		return nil, err
	}
	if m, ok := v.(map[string]any); ok {
		if features, ok := m["features"].([]any); ok {
			return features, nil
		}
	}
	return []any{}, nil
}

func (c *Client) GetHistory(ctx context.Context, layer, id string, opts Options) (any, error) {
	return c.query(ctx, c.resolver.History(layer, id), opts)
}

func (c *Client) GetNearby(ctx context.Context, layer, geohash string, opts Options) (any, error) {
	return c.query(ctx, c.resolver.Nearby(layer, geohash), opts)
}

func (c *Client) GetNearbyLatLon(ctx context.Context, layer string, lat, lon float64, opts Options) (any, error) {
	return c.query(ctx, c.resolver.NearbyLatLon(layer, lat, lon), opts)
}

func (c *Client) GetNearbyAddress(ctx context.Context, lat, lon float64) (any, error) {
	return c.query(ctx, c.resolver.NearbyAddress(lat, lon), nil)
}

func (c *Client) GetLayerInformation(ctx context.Context, layer string) (any, error) {
	return c.query(ctx, c.resolver.Layer(layer), nil)
}

func (c *Client) GetDensity(ctx context.Context, lat, lon float64, day string, hour Hour) (any, error) {
	return c.query(ctx, c.resolver.Density(lat, lon, day, hour), nil)
}

func (c *Client) GetOverlaps(ctx context.Context, south, west, north, east float64, opts Options) (any, error) {
	return c.query(ctx, c.resolver.Overlaps(south, west, north, east), opts)
}

func (c *Client) GetBoundary(ctx context.Context, id string) (any, error) {
	return c.query(ctx, c.resolver.Boundary(id), nil)
}

func (c *Client) GetContains(ctx context.Context, lat, lon float64) (any, error) {
	return c.query(ctx, c.resolver.Contains(lat, lon), nil)
}

// the parsed payload is returned as is: objects, arrays and nil alike
func (c *Client) query(ctx context.Context, path string, opts Options) (any, error) {
	return c.Get(ctx, path, opts)
}

// Get, Put, Post and Delete return the transport result unchanged.

func (c *Client) Get(ctx context.Context, path string, query url.Values) (any, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}
	return conn.Get(ctx, path, query)
}

func (c *Client) Put(ctx context.Context, path string, body any) (any, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}
	return conn.Put(ctx, path, body)
}

func (c *Client) Post(ctx context.Context, path string, body any) (any, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}
	return conn.Post(ctx, path, body)
}

func (c *Client) Delete(ctx context.Context, path string, query url.Values) (any, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}
	return conn.Delete(ctx, path, query)
}
