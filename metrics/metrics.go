// Package metrics 定义推荐链路的 Prometheus 指标（promauto 注册到默认 Registry）。
//
// 本包只负责记录，读取方式由嵌入方决定：通过 prometheus.DefaultGatherer 采集，
// 常见做法是挂载 promhttp.Handler()。CLI 单次运行不对外暴露指标。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 推荐路径标签值
const (
	PathRanked    = "ranked"
	PathColdStart = "cold_start"
	PathError     = "error"
)

// 推荐理由结果标签值
const (
	ExplanationGenerated = "generated"
	ExplanationFallback  = "fallback"
)

var (
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoprec_recommend_requests_total",
			Help: "Total number of recommend requests by terminal path",
		},
		[]string{"path"}, // ranked, cold_start, error
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shoprec_recommend_duration_seconds",
			Help:    "End-to-end recommend latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	Explanations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoprec_explanations_total",
			Help: "Total number of explanations by outcome",
		},
		[]string{"outcome"}, // generated, fallback
	)

	NodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shoprec_pipeline_node_duration_seconds",
			Help:    "Duration of a single pipeline node in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 2.5, 5},
		},
		[]string{"node", "kind"},
	)
)

// RecordRecommend 记录一次推荐请求。
func RecordRecommend(path string, took time.Duration) {
	RecommendRequests.WithLabelValues(path).Inc()
	RecommendDuration.WithLabelValues(path).Observe(took.Seconds())
}

// RecordExplanation 记录一次推荐理由生成结果。
func RecordExplanation(fallback bool) {
	outcome := ExplanationGenerated
	if fallback {
		outcome = ExplanationFallback
	}
	Explanations.WithLabelValues(outcome).Inc()
}

// RecordNode 记录单个 pipeline node 的耗时。
func RecordNode(node, kind string, took time.Duration) {
	NodeDuration.WithLabelValues(node, kind).Observe(took.Seconds())
}
