package influxdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nerrad567/gadgetd/internal/infrastructure/config"
)

// Defaults applied by Connect when the config leaves a field empty.
const (
	DefaultOrg         = "gadgetd"
	DefaultBucket      = "gadgets"
	DefaultMeasurement = "gadget_lifecycle"

	defaultBatchSize     = 100
	defaultFlushInterval = 10 * time.Second

	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second
)

// settings is the resolved form of config.InfluxDBConfig.
type settings struct {
	url, token    string
	org, bucket   string
	measurement   string
	batchSize     uint
	flushInterval time.Duration
}

func resolve(cfg config.InfluxDBConfig) settings {
	s := settings{
		url:           cfg.URL,
		token:         cfg.Token,
		org:           cfg.Org,
		bucket:        cfg.Bucket,
		measurement:   DefaultMeasurement,
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
	}
	if s.org == "" {
		s.org = DefaultOrg
	}
	if s.bucket == "" {
		s.bucket = DefaultBucket
	}
	if cfg.BatchSize > 0 {
		s.batchSize = uint(cfg.BatchSize)
	}
	if cfg.FlushInterval > 0 {
		s.flushInterval = time.Duration(cfg.FlushInterval) * time.Second
	}
	return s
}

func (s settings) options() *influxdb2.Options {
	return influxdb2.DefaultOptions().
		SetBatchSize(s.batchSize).
		SetFlushInterval(uint(s.flushInterval.Milliseconds()))
}

// Client records gadget lifecycle transitions in an InfluxDB v2 bucket.
//
// Writes are batched and non-blocking. All methods are safe for concurrent use.
type Client struct {
	client      influxdb2.Client
	writeAPI    api.WriteAPI
	bucket      string
	measurement string

	mu        sync.RWMutex
	connected bool
	onError   func(err error)
}

// Connect pings the server and opens a batching write API for the lifecycle
// bucket. ErrDisabled is returned without dialling when cfg.Enabled is false.
func Connect(ctx context.Context, cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	s := resolve(cfg)
	c := &Client{
		client:      influxdb2.NewClientWithOptions(s.url, s.token, s.options()),
		bucket:      s.bucket,
		measurement: s.measurement,
	}

	if err := c.ping(ctx, connectTimeout); err != nil {
		c.client.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c.writeAPI = c.client.WriteAPI(s.org, s.bucket)
	c.connected = true
	go c.forwardErrors(c.writeAPI.Errors())
	return c, nil
}

func (c *Client) ping(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	healthy, err := c.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("ping %s: %w", c.bucket, err)
	}
	if !healthy {
		return fmt.Errorf("ping %s: server not healthy", c.bucket)
	}
	return nil
}

func (c *Client) forwardErrors(errs <-chan error) {
	for err := range errs {
		c.mu.RLock()
		callback := c.onError
		c.mu.RUnlock()

		if callback != nil {
			callback(err)
		}
	}
}

// Bucket returns the bucket lifecycle points are written to.
func (c *Client) Bucket() string {
	return c.bucket
}

// Close flushes buffered points and releases the client.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	c.writeAPI.Flush()
	c.client.Close()
	return nil
}

// Flush forces buffered points out.
func (c *Client) Flush() {
	if c.IsConnected() {
		c.writeAPI.Flush()
	}
}

// HealthCheck pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	if err := c.ping(ctx, pingTimeout); err != nil {
		return fmt.Errorf("influxdb health check: %w", err)
	}
	return nil
}

// IsConnected returns the last known connection state.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SetOnError sets the callback for async write failures.
func (c *Client) SetOnError(callback func(err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = callback
}
