// Package metrics exports store and HTTP metrics to Prometheus.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
)

// StoreObserver receives the outcome of every metadata/object store call.
type StoreObserver interface {
	ObserveStoreOp(store, op string, duration time.Duration, err error)
}

// Observer records store operation latency/failures and HTTP request counts.
type Observer struct {
	storeDuration *promclient.HistogramVec
	storeErrors   *promclient.CounterVec
	httpRequests  *promclient.CounterVec
}

// NewObserver registers the service collectors with reg.
func NewObserver(namespace string, reg promclient.Registerer) (*Observer, error) {
	if namespace == "" {
		namespace = "image_service"
	}
	if reg == nil {
		reg = promclient.DefaultRegisterer
	}
	o := &Observer{
		storeDuration: promclient.NewHistogramVec(promclient.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Latency of metadata and object store operations.",
			Buckets:   promclient.DefBuckets,
		}, []string{"store", "operation"}),
		storeErrors: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "store_operation_errors_total",
			Help:      "Count of failed metadata and object store operations.",
		}, []string{"store", "operation"}),
		httpRequests: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
	}

	var err error
	if o.storeDuration, err = register(reg, o.storeDuration); err != nil {
		return nil, fmt.Errorf("register store histogram: %w", err)
	}
	if o.storeErrors, err = register(reg, o.storeErrors); err != nil {
		return nil, fmt.Errorf("register store error counter: %w", err)
	}
	if o.httpRequests, err = register(reg, o.httpRequests); err != nil {
		return nil, fmt.Errorf("register http counter: %w", err)
	}
	return o, nil
}

// register adds c to reg, reusing an identical collector registered earlier
// (the Lambda runtime may build the handler more than once per process).
func register[C promclient.Collector](reg promclient.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(promclient.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveStoreOp implements StoreObserver.
func (o *Observer) ObserveStoreOp(store, op string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.storeDuration.WithLabelValues(store, op).Observe(duration.Seconds())
	if err != nil {
		o.storeErrors.WithLabelValues(store, op).Inc()
	}
}

// ObserveHTTPRequest counts one served request.
func (o *Observer) ObserveHTTPRequest(method, route string, status int) {
	if o == nil {
		return
	}
	o.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

var _ StoreObserver = (*Observer)(nil)
