package classifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var censorAPIDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "commentguard_censor_api_duration_sec",
	Help: "Duration of text censor API calls",
})

var censorAPICount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "commentguard_censor_api_count",
	Help: "Number of text censor API calls, by HTTP status code",
}, []string{"status"})

var tokenExchangeCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "commentguard_censor_token_exchange_count",
	Help: "Number of access token exchanges, by result",
}, []string{"result"})

var verdictCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "commentguard_censor_verdict_count",
	Help: "Number of classification verdicts, by verdict",
}, []string{"verdict"})
