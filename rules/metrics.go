package rules

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grimoire_ticks_total",
		Help: "Evaluated ticks by outcome (acted, idle, hold).",
	}, []string{"result"})

	rulesFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grimoire_rule_fired_total",
		Help: "Commands issued per rule.",
	}, []string{"rule"})

	ruleErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grimoire_rule_errors_total",
		Help: "Rule and hook failures by stage; transient failures are not counted toward disabling.",
	}, []string{"stage"})

	rulesDisabled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grimoire_rules_disabled_total",
		Help: "Rules disabled for the session after repeated failures.",
	})

	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "grimoire_tick_duration_seconds",
		Help:    "Time spent evaluating one snapshot.",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12),
	})
)
