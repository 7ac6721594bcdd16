package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAnalysis_CountsByOutcome(t *testing.T) {
	ok := testutil.ToFloat64(analysesTotal.WithLabelValues(OutcomeSuccess))
	failed := testutil.ToFloat64(analysesTotal.WithLabelValues(OutcomeFailure))

	RecordAnalysis(time.Now(), nil)
	RecordAnalysis(time.Now(), errors.New("boom"))
	RecordAnalysis(time.Now(), nil)

	assert.Equal(t, ok+2, testutil.ToFloat64(analysesTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, failed+1, testutil.ToFloat64(analysesTotal.WithLabelValues(OutcomeFailure)))
}

func TestRecordCondition(t *testing.T) {
	before := testutil.ToFloat64(conditionsTotal.WithLabelValues("DEGENERATE_VARIANCE"))
	RecordCondition("DEGENERATE_VARIANCE")
	assert.Equal(t, before+1, testutil.ToFloat64(conditionsTotal.WithLabelValues("DEGENERATE_VARIANCE")))
}

func TestRecordIngest(t *testing.T) {
	before := testutil.ToFloat64(ingestsTotal.WithLabelValues("simulation", OutcomeSuccess))
	RecordIngest("simulation", nil)
	assert.Equal(t, before+1, testutil.ToFloat64(ingestsTotal.WithLabelValues("simulation", OutcomeSuccess)))
}
