package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveComputation(t *testing.T) {
	okBefore := testutil.ToFloat64(PhaseComputations.WithLabelValues("ok"))
	cycleBefore := testutil.ToFloat64(PhaseComputations.WithLabelValues("cycle"))

	ObserveComputation(time.Now(), 7, nil)
	ObserveComputation(time.Now(), 3, errors.New("dependency cycle"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(PhaseComputations.WithLabelValues("ok")))
	assert.Equal(t, cycleBefore+1, testutil.ToFloat64(PhaseComputations.WithLabelValues("cycle")))
	assert.Equal(t, float64(3), testutil.ToFloat64(Epics))
}

func TestRecordCycleRejection(t *testing.T) {
	before := testutil.ToFloat64(CycleRejections.WithLabelValues("store"))

	RecordCycleRejection("store")
	RecordCycleRejection("store")

	assert.Equal(t, before+2, testutil.ToFloat64(CycleRejections.WithLabelValues("store")))
}
