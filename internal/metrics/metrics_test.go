package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/codecrafters-dev/platform/internal/submission"
)

func TestMetrics_ObserveUpload(t *testing.T) {
	m := New()
	m.ObserveUpload(submission.AssetImage, "success", 150*time.Millisecond)
	m.ObserveUpload(submission.AssetImage, "success", 200*time.Millisecond)
	m.ObserveUpload(submission.AssetVideo, "error", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.uploadsTotal.WithLabelValues("image", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploadsTotal.WithLabelValues("video", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.uploadDuration))
}

func TestMetrics_TransitionsTrackInFlight(t *testing.T) {
	m := New()
	id := uuid.New()
	m.ObserveTransition(submission.Transition{AttemptID: id, From: submission.StateIdle, To: submission.StateUploading})
	m.ObserveTransition(submission.Transition{AttemptID: uuid.New(), From: submission.StateIdle, To: submission.StateUploading})
	assert.Equal(t, 2.0, testutil.ToFloat64(m.inFlight))

	m.ObserveTransition(submission.Transition{AttemptID: id, From: submission.StateUploading, To: submission.StateSubmitting})
	m.ObserveTransition(submission.Transition{AttemptID: id, From: submission.StateSubmitting, To: submission.StateSucceeded})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitionsTotal.WithLabelValues("uploading")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitionsTotal.WithLabelValues("succeeded")))
}

func TestMetrics_MiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/users/{username}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := m.Middleware(mux)

	for _, name := range []string{"ada", "linus"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/users/"+name, nil))
		assert.Equal(t, http.StatusTeapot, rr.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "GET /v1/users/{username}", "418")))
}

func TestMetrics_HandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveUpload(submission.AssetImage, "success", time.Millisecond)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), `uploads_total{asset_class="image",outcome="success"} 1`))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveUpload(submission.AssetImage, "success", time.Millisecond)
		m.ObserveTransition(submission.Transition{To: submission.StateFailed})
	})

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
