package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordConnect(t *testing.T) {
	before := testutil.ToFloat64(DBConnectAttempts.WithLabelValues("test", "failure"))
	RecordConnect("test", errors.New("refused"))
	assert.Equal(t, before+1, testutil.ToFloat64(DBConnectAttempts.WithLabelValues("test", "failure")))

	before = testutil.ToFloat64(DBConnectAttempts.WithLabelValues("test", "success"))
	RecordConnect("test", nil)
	assert.Equal(t, before+1, testutil.ToFloat64(DBConnectAttempts.WithLabelValues("test", "success")))
}

func TestRecordCollapsed(t *testing.T) {
	before := testutil.ToFloat64(LabelsCollapsed.WithLabelValues("test"))
	RecordCollapsed("test", 5, 2)
	RecordCollapsed("test", 2, 2)
	assert.Equal(t, before+3, testutil.ToFloat64(LabelsCollapsed.WithLabelValues("test")))
}

func TestRecordQueryAndRequest(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("test_op"))
	RecordQuery("test_op", time.Millisecond, nil)
	RecordQuery("test_op", time.Millisecond, errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(DBQueryErrors.WithLabelValues("test_op")))

	beforeReq := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/test", "200"))
	RecordAPIRequest("GET", "/test", 200, time.Millisecond)
	assert.Equal(t, beforeReq+1, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/test", "200")))
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	assert.Equal(t, before+1, testutil.ToFloat64(APIActiveRequests))
	TrackActiveRequest(false)
	assert.Equal(t, before, testutil.ToFloat64(APIActiveRequests))
}
