package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// unmatchedRoute labels requests no admin route matched, so probing random paths cannot
// create new series.
const unmatchedRoute = "unmatched"

// adminHTTPMetrics holds the admin server instruments.
type adminHTTPMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	inFlight metric.Int64UpDownCounter
}

func newAdminHTTPMetrics(meterProvider metric.MeterProvider, namespace string) (*adminHTTPMetrics, error) {
	meter := meterProvider.Meter(namespace)

	requests, err := meter.Int64Counter(
		fmt.Sprintf("%s_http_requests_total", namespace),
		metric.WithDescription("Total number of admin HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		fmt.Sprintf("%s_http_request_duration_seconds", namespace),
		metric.WithDescription("Admin HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5),
	)
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter(
		fmt.Sprintf("%s_http_requests_in_flight", namespace),
		metric.WithDescription("Admin HTTP requests currently being served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &adminHTTPMetrics{requests: requests, duration: duration, inFlight: inFlight}, nil
}

// HTTPMetricsMiddleware returns a Gin middleware recording admin request count, duration and
// in-flight requests, labelled by method, route pattern and status code. Requests for
// skipRoutes (typically the scrape endpoint itself) are not recorded.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string, skipRoutes ...string) gin.HandlerFunc {
	instruments, err := newAdminHTTPMetrics(meterProvider, namespace)
	if err != nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	skip := make(map[string]struct{}, len(skipRoutes))
	for _, route := range skipRoutes {
		skip[route] = struct{}{}
	}

	return func(c *gin.Context) {
		route := routeLabel(c.FullPath())
		if _, ok := skip[route]; ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		instruments.inFlight.Add(ctx, 1)
		start := time.Now()

		c.Next()

		instruments.inFlight.Add(ctx, -1)
		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("route", route),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		)
		instruments.requests.Add(ctx, 1, attrs)
		instruments.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}

// routeLabel returns the matched route pattern, never the raw path.
func routeLabel(fullPath string) string {
	if fullPath == "" {
		return unmatchedRoute
	}
	return fullPath
}
