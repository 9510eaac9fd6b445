package predictor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vagangabrain/Happy-Meowth/internal/cache"
	"github.com/vagangabrain/Happy-Meowth/internal/labels"
	"github.com/vagangabrain/Happy-Meowth/pkg/httpclient"
	"github.com/vagangabrain/Happy-Meowth/pkg/metric"
)

// Session runs the loaded classifier over a preprocessed input tensor.
type Session interface {
	Run(input []float32) ([]float32, error)
	Close() error
}

type Config struct {
	LabelsPath          string
	ReferenceImagesPath string
	CacheMaxSize        int
	CacheTtl            time.Duration
}

// Predictor owns the inference session, the label table and the result
// cache. It is safe for concurrent use from any number of goroutines.
type Predictor struct {
	session Session
	client  *httpclient.Client
	labels  []string
	cache   *cache.TTLCache[Prediction]
}

// New builds a Predictor. The label table is resolved eagerly so a
// misconfigured deployment fails here instead of on the first request.
func New(cfg Config, session Session, client *httpclient.Client) (*Predictor, error) {
	if session == nil {
		return nil, fmt.Errorf("predictor requires an inference session")
	}
	table, err := labels.Load(cfg.LabelsPath, cfg.ReferenceImagesPath)
	if err != nil {
		return nil, fmt.Errorf("loading label table: %w", err)
	}
	return &Predictor{
		session: session,
		client:  client,
		labels:  table,
		cache:   cache.New[Prediction](cfg.CacheMaxSize, cfg.CacheTtl),
	}, nil
}

// Predict classifies the image at url through the shared HTTP client,
// consulting the result cache first. The context is honored while the
// image is being fetched; a repeated URL within the cache TTL never
// touches the network.
func (p *Predictor) Predict(ctx context.Context, url string) (Prediction, error) {
	return p.PredictWithClient(ctx, url, p.client)
}

// PredictWithClient is Predict with a caller-supplied HTTP client. A nil
// client falls back to the predictor's own; if neither is available a
// cache miss fails with a FetchError rather than reaching the network.
func (p *Predictor) PredictWithClient(ctx context.Context, url string, client *httpclient.Client) (Prediction, error) {
	key := cache.KeyFor(url)
	if pred, ok := p.cache.Get(key); ok {
		metric.Incr(metric.PredictionCacheHitCount, []string{})
		log.Debug().Msgf("Cache hit for %s", url)
		return pred, nil
	}
	metric.Incr(metric.PredictionCacheMissCount, []string{})

	if client == nil {
		client = p.client
	}
	data, err := fetchImage(ctx, client, url)
	if err != nil {
		metric.Incr(metric.ImageFetchErrorCount, []string{})
		return Prediction{}, err
	}
	pred, err := p.classify(data, url)
	if err != nil {
		return Prediction{}, err
	}
	p.cache.Set(key, pred)
	metric.Gauge(metric.PredictionCacheSize, float64(p.cache.Len()), []string{})
	return pred, nil
}

// PredictImage classifies raw image bytes, for callers that already hold
// the file. Nothing is cached here: cache entries are keyed by source
// URL only.
func (p *Predictor) PredictImage(data []byte) (Prediction, error) {
	return p.classify(data, "")
}

func (p *Predictor) classify(data []byte, url string) (Prediction, error) {
	img, err := decodeImage(data)
	if err != nil {
		metric.Incr(metric.ImageDecodeErrorCount, []string{})
		return Prediction{}, &DecodeError{URL: url, Err: err}
	}
	input := preprocess(img)

	startTime := time.Now()
	logits, err := p.session.Run(input)
	metric.Timing(metric.InferenceLatency, time.Since(startTime), []string{})
	if err != nil {
		return Prediction{}, fmt.Errorf("running inference: %w", err)
	}
	return p.formatResult(logits), nil
}

// Close releases the inference session.
func (p *Predictor) Close() error {
	return p.session.Close()
}
