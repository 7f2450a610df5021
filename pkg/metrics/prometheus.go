package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var reqCnt = &Metric{
	ID:          "reqCnt",
	Name:        "req_total",
	Description: "How many HTTP requests processed, partitioned by status code and HTTP method.",
	Type:        "counter_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

var reqDur = &Metric{
	ID:          "reqDur",
	Name:        "req_dur_ms",
	Description: "The HTTP request latencies in milliseconds.",
	Type:        "histogram_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

var resSz = &Metric{
	ID:          "resSz",
	Name:        "resp_sz_bytes",
	Description: "The HTTP response sizes in bytes.",
	Type:        "summary_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

const defaultMetricPath = "/metrics"

type Logger interface {
	Errorf(format string, v ...interface{})
	Infow(msg string, keysAndValues ...interface{})
}

// URLLabelFn maps a request to its "url" label; use the route template to
// keep cardinality bounded.
type URLLabelFn func(c *gin.Context) string

type HTTPOptions struct {
	Subsystem  string
	MetricPath string
	URLLabelFn URLLabelFn
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Logger     Logger
}

// HTTP collects request metrics for a gin engine and serves them on a
// separate listener.
type HTTP struct {
	reqCnt     *prometheus.CounterVec
	reqDur     *prometheus.HistogramVec
	resSz      *prometheus.SummaryVec
	path       string
	urlLabel   URLLabelFn
	gatherer   prometheus.Gatherer
	logger     Logger
	listenAddr string
	srv        *http.Server
}

func NewHTTP(opts HTTPOptions) (*HTTP, error) {
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	p := &HTTP{
		path:     opts.MetricPath,
		urlLabel: opts.URLLabelFn,
		gatherer: opts.Gatherer,
		logger:   opts.Logger,
	}
	if p.path == "" {
		p.path = defaultMetricPath
	}
	if p.urlLabel == nil {
		p.urlLabel = func(c *gin.Context) string {
			if fp := c.FullPath(); fp != "" {
				return fp
			}
			return c.Request.URL.Path
		}
	}

	for _, def := range []*Metric{reqCnt, reqDur, resSz} {
		c, err := register(opts.Registerer, NewMetric(def, opts.Subsystem))
		if err != nil {
			return nil, err
		}
		switch def {
		case reqCnt:
			p.reqCnt = c.(*prometheus.CounterVec)
		case reqDur:
			p.reqDur = c.(*prometheus.HistogramVec)
		case resSz:
			p.resSz = c.(*prometheus.SummaryVec)
		}
	}
	return p, nil
}

// SetListenAddress exposes metrics on their own address instead of the
// application engine.
func (p *HTTP) SetListenAddress(addr string) {
	p.listenAddr = addr
}

// Use installs the middleware on e and exposes the metrics endpoint.
func (p *HTTP) Use(e *gin.Engine) {
	e.Use(p.HandlerFunc())
	handler := promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
	if p.listenAddr == "" {
		e.GET(p.path, gin.WrapH(handler))
		return
	}
	mux := http.NewServeMux()
	mux.Handle(p.path, handler)
	p.srv = &http.Server{Addr: p.listenAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := p.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed && p.logger != nil {
			p.logger.Errorf("metrics server error: %v", err)
		}
	}()
	if p.logger != nil {
		p.logger.Infow("metrics started", "addr", p.listenAddr)
	}
}

// Close stops the dedicated metrics listener, if any.
func (p *HTTP) Close() error {
	if p.srv == nil {
		return nil
	}
	return p.srv.Close()
}

func (p *HTTP) HandlerFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == p.path {
			c.Next()
			return
		}
		start := time.Now()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		url := p.urlLabel(c)
		ref := c.Request.Header.Get(RefererKey)

		p.reqDur.WithLabelValues(status, c.Request.Method, url, ref).Observe(MillisecondsSince(start))
		p.reqCnt.WithLabelValues(status, c.Request.Method, url, ref).Inc()
		p.resSz.WithLabelValues(status, c.Request.Method, url, ref).Observe(float64(c.Writer.Size()))
	}
}
