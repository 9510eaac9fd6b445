package httpclient

import (
	"net"
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vagangabrain/Happy-Meowth/pkg/metric"
)

var (
	defaultDialTimeout      = 2000  // in milliseconds
	defaultKeepAliveTimeout = 30000 // in milliseconds
)

type Config struct {
	UserAgent   string
	TimeoutInMs int
	Transport   *TransportConfig
}

type TransportConfig struct {
	DialTimeoutInMs      int
	MaxIdleConns         int
	MaxIdleConnsPerHost  int
	IdleConnTimeoutInMs  int
	KeepAliveTimeoutInMs int
}

// Client is a pooled HTTP client shared across requests. One instance is
// created at startup and closed on shutdown.
type Client struct {
	CoreClient *http.Client
	userAgent  string
}

type pathPattern struct {
	regex       *regexp.Regexp
	replacement string
}

var patterns = []pathPattern{
	{
		regex:       regexp.MustCompile(`/[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`),
		replacement: "/{uuid}",
	},
	{
		regex:       regexp.MustCompile(`/[0-9a-fA-F]{24}`),
		replacement: "/{objectId}",
	},
	{
		regex:       regexp.MustCompile(`/\d+`),
		replacement: "/{id}",
	},
}

func NewClient(config *Config) *Client {
	return &Client{
		CoreClient: getHTTPClient(config),
		userAgent:  config.UserAgent,
	}
}

func getHTTPClient(config *Config) *http.Client {
	log.Debug().Msgf("Creating http client with config: %+v", config)
	return &http.Client{
		Transport: getHttpTransportFromConfig(config.Transport),
		Timeout:   time.Duration(config.TimeoutInMs) * time.Millisecond,
	}
}

func getHttpTransportFromConfig(transport *TransportConfig) *http.Transport {
	if transport == nil {
		transport = &TransportConfig{}
	}
	dialTimeout := transport.DialTimeoutInMs
	if dialTimeout == 0 {
		dialTimeout = defaultDialTimeout
	}
	keepAliveTimeout := transport.KeepAliveTimeoutInMs
	if keepAliveTimeout == 0 {
		keepAliveTimeout = defaultKeepAliveTimeout
	}
	transporter := http.DefaultTransport.(*http.Transport).Clone()
	transporter.DialContext = (&net.Dialer{
		Timeout:   time.Duration(dialTimeout) * time.Millisecond,
		KeepAlive: time.Duration(keepAliveTimeout) * time.Millisecond,
	}).DialContext
	if transport.MaxIdleConns > 0 {
		transporter.MaxIdleConns = transport.MaxIdleConns
	}
	if transport.MaxIdleConnsPerHost > 0 {
		transporter.MaxIdleConnsPerHost = transport.MaxIdleConnsPerHost
	}
	if transport.IdleConnTimeoutInMs > 0 {
		transporter.IdleConnTimeout = time.Duration(transport.IdleConnTimeoutInMs) * time.Millisecond
	}
	log.Debug().Msgf("Creating http transporter with config: %+v", transport)
	return transporter
}

// Do is a wrapper around http.Client.Do and capable to generate metric for external http service
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	startTime := time.Now()
	resp, err := c.CoreClient.Do(req)
	if resp == nil {
		if os.IsTimeout(err) {
			log.Error().Err(err).Msg("Request timed out")
			c.emitMetrics(req, startTime, http.StatusGatewayTimeout)
			return nil, err
		}
		//keeping this 0 as status code as we are not able to get the status code from error
		c.emitMetrics(req, startTime, 0)
		return nil, err
	}
	c.emitMetrics(req, startTime, resp.StatusCode)
	return resp, err
}

// Close releases idle pooled connections. Call on shutdown.
func (c *Client) Close() {
	c.CoreClient.CloseIdleConnections()
}

func (c *Client) emitMetrics(req *http.Request, startTime time.Time, statusCode int) {
	latency := time.Since(startTime)
	genericPath := getNormalizedPath(req.URL.Path)
	latencyTags := metric.BuildExternalHTTPServiceLatencyTags(req.URL.Host, genericPath, req.Method, statusCode)
	countTags := metric.BuildExternalHTTPServiceCountTags(req.URL.Host, genericPath, req.Method, statusCode)
	metric.Timing(metric.ExternalApiRequestLatency, latency, latencyTags)
	metric.Incr(metric.ExternalApiRequestCount, countTags)
}

func getNormalizedPath(path string) string {
	normalizedPath := path
	for _, pattern := range patterns {
		normalizedPath = pattern.regex.ReplaceAllString(normalizedPath, pattern.replacement)
	}
	return normalizedPath
}
