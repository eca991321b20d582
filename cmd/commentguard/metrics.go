package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var precheckCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "commentguard_precheck_count",
	Help: "Number of draft comments prechecked, by decision",
}, []string{"decision"})

var commentCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "commentguard_comment_count",
	Help: "Number of submitted comments, by pipeline stage and decision",
}, []string{"stage", "decision"})
