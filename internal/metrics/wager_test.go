package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

//nolint:paralleltest
func TestRecordWager_EmptyOutcomeIsError(t *testing.T) {
	before := testutil.ToFloat64(wagerTotal.WithLabelValues(OpFight, "error"))

	RecordWager(OpFight, "", time.Now())

	assert.Equal(t, before+1, testutil.ToFloat64(wagerTotal.WithLabelValues(OpFight, "error")))
}

//nolint:paralleltest
func TestAddFee_IgnoresNonPositive(t *testing.T) {
	before := testutil.ToFloat64(feesTotal.WithLabelValues("battle"))

	AddFee("battle", 0)
	AddFee("battle", -3)
	AddFee("battle", 5.5)

	assert.InDelta(t, before+5.5, testutil.ToFloat64(feesTotal.WithLabelValues("battle")), 1e-9)
}
