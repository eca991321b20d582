package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var evaluationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "commentguard_evaluation_duration_sec",
	Help: "Total duration of comment evaluation",
}, []string{"entry"})

var decisionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "commentguard_decisions",
	Help: "Number of decisions, by outcome and first reason",
}, []string{"entry", "outcome", "reason"})

var evaluationErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "commentguard_evaluation_errors",
	Help: "Number of evaluations where rule execution failed",
}, []string{"entry"})

var sideEffectErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "commentguard_side_effect_errors",
	Help: "Number of failed side effects (audit, delete, status update), by kind",
}, []string{"kind"})

var recheckSkipCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "commentguard_recheck_skipped",
	Help: "Number of post-save re-checks skipped, by cause",
}, []string{"cause"})
