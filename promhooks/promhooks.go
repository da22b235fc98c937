// Package promhooks implements bpcache.Hooks as Prometheus counters.
package promhooks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/unkn0wn-root/bpcache"
)

type Hooks struct {
	Lookups       *prometheus.CounterVec
	DecodeErrors  prometheus.Counter
	SaveRejects   prometheus.Counter
	ClearMisses   prometheus.Counter
	CommitFailure prometheus.Counter
}

var _ bpcache.Hooks = (*Hooks)(nil)

// New registers the collectors on reg. A nil reg uses prometheus.DefaultRegisterer.
// Registering twice on the same registry panics, as promauto does.
func New(reg prometheus.Registerer, namespace string) *Hooks {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "bpcache"
	}
	f := promauto.With(reg)
	return &Hooks{
		Lookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Total number of item lookups.",
		}, []string{"result" /* hit | miss */}),
		DecodeErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Stored values the codec could not decode.",
		}),
		SaveRejects: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "save_rejected_total",
			Help:      "Writes the store answered with ok=false.",
		}),
		ClearMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clear_misses_total",
			Help:      "Keys listed by clear that were already gone.",
		}),
		CommitFailure: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commit_failures_total",
			Help:      "Deferred saves that failed during commit.",
		}),
	}
}

func (h *Hooks) Hit(string)                 { h.Lookups.WithLabelValues("hit").Inc() }
func (h *Hooks) Miss(string)                { h.Lookups.WithLabelValues("miss").Inc() }
func (h *Hooks) DecodeError(string, error)  { h.DecodeErrors.Inc() }
func (h *Hooks) SaveRejected(string)        { h.SaveRejects.Inc() }
func (h *Hooks) ClearMiss(string)           { h.ClearMisses.Inc() }
func (h *Hooks) CommitFailed(string, error) { h.CommitFailure.Inc() }
