package engine

import (
	"slices"

	"github.com/sanonone/kektorgraph/pkg/metrics"
	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// CreateAuthorizations registers labels as known to this engine and returns
// them as an Authorizations set. Registering a label twice is harmless.
func (e *Engine) CreateAuthorizations(labels ...string) visibility.Authorizations {
	auths := visibility.NewAuthorizations(labels...)

	e.authMu.Lock()
	for _, l := range auths.Labels() {
		e.knownLabels[l] = struct{}{}
	}
	e.authMu.Unlock()
	return auths
}

// KnownAuthorizations returns every registered label, sorted.
func (e *Engine) KnownAuthorizations() []string {
	e.authMu.RLock()
	labels := make([]string, 0, len(e.knownLabels))
	for l := range e.knownLabels {
		labels = append(labels, l)
	}
	e.authMu.RUnlock()

	slices.Sort(labels)
	return labels
}

// checkAuthorizations fails with a *SecurityError when auths holds a label
// that was never registered. It also fails on a closed engine.
func (e *Engine) checkAuthorizations(auths visibility.Authorizations) error {
	if err := e.checkOpen(); err != nil {
		return err
	}

	var unknown []string
	e.authMu.RLock()
	for _, l := range auths.Labels() {
		if _, ok := e.knownLabels[l]; !ok {
			unknown = append(unknown, l)
		}
	}
	e.authMu.RUnlock()

	if len(unknown) == 0 {
		return nil
	}
	metrics.SecurityRejectionsTotal.WithLabelValues(e.opts.Name).Inc()
	e.logger.Warn("rejected unknown authorizations", "labels", unknown)
	return &SecurityError{Labels: unknown}
}
