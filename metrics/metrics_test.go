package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRecommend(t *testing.T) {
	before := testutil.ToFloat64(RecommendRequests.WithLabelValues(PathColdStart))
	RecordRecommend(PathColdStart, 3*time.Millisecond)
	after := testutil.ToFloat64(RecommendRequests.WithLabelValues(PathColdStart))
	if after != before+1 {
		t.Errorf("cold_start counter = %v, want %v", after, before+1)
	}
}

func TestRecordExplanation(t *testing.T) {
	gen := testutil.ToFloat64(Explanations.WithLabelValues(ExplanationGenerated))
	fb := testutil.ToFloat64(Explanations.WithLabelValues(ExplanationFallback))

	RecordExplanation(false)
	RecordExplanation(true)
	RecordExplanation(true)

	if got := testutil.ToFloat64(Explanations.WithLabelValues(ExplanationGenerated)); got != gen+1 {
		t.Errorf("generated = %v, want %v", got, gen+1)
	}
	if got := testutil.ToFloat64(Explanations.WithLabelValues(ExplanationFallback)); got != fb+2 {
		t.Errorf("fallback = %v, want %v", got, fb+2)
	}
}

func TestRecordNode(t *testing.T) {
	RecordNode("recall.content", "recall", time.Millisecond)
	if n := testutil.CollectAndCount(NodeDuration); n == 0 {
		t.Error("node histogram has no series")
	}
}
