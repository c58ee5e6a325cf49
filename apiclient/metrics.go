// apiclient/metrics.go
package apiclient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "apiclient"

const (
	outcomeSuccess      = "success"
	outcomeError        = "error"
	outcomeUnauthorized = "unauthorized"
	outcomeRejected     = "rejected"
	outcomeSkipped      = "skipped"
)

// Metrics holds the session client's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	requests    *prometheus.CounterVec
	retries     prometheus.Counter
	refreshes   *prometheus.CounterVec
	tokenGrants *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Requests sent through the session client by method and outcome.",
		}, []string{"method", "outcome"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "retries_total",
			Help:      "Requests retried after a token refresh.",
		}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "token_refreshes_total",
			Help:      "Access token refreshes by outcome.",
		}, []string{"outcome"}),
		tokenGrants: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "token_grants_total",
			Help:      "Token endpoint calls by grant type and outcome.",
		}, []string{"grant_type", "outcome"}),
	}

	for _, collector := range []prometheus.Collector{m.requests, m.retries, m.refreshes, m.tokenGrants} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("registering session client metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) observeRequest(method, outcome string) {
	if m == nil {
		return
	}
	if method == "" {
		method = "GET"
	}
	m.requests.WithLabelValues(strings.ToUpper(method), outcome).Inc()
}

func (m *Metrics) observeRetry() {
	if m == nil {
		return
	}
	m.retries.Inc()
}

func (m *Metrics) observeRefresh(outcome string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeTokenGrant(grantType, outcome string) {
	if m == nil {
		return
	}
	m.tokenGrants.WithLabelValues(grantType, outcome).Inc()
}

func requestOutcome(err error) string {
	if err == nil {
		return outcomeSuccess
	}
	return outcomeError
}

func grantOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, ErrWrongCredentials):
		return outcomeRejected
	}
	return outcomeError
}
