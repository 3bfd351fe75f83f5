package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestResultLabel(t *testing.T) {
	assert.Equal(t, ResultSuccess, ResultLabel(nil))
	assert.Equal(t, ResultFailure, ResultLabel(errors.New("boom")))
}

func TestCompensationsCounter(t *testing.T) {
	before := testutil.ToFloat64(Compensations.WithLabelValues("test.op"))
	Compensations.WithLabelValues("test.op").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Compensations.WithLabelValues("test.op")))
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "socialhub-test"})
	assert.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	span, ctx := StartCoordinatorSpan(context.Background(), "PostService", "CreatePost")
	assert.NotNil(t, ctx)
	span.SetError(errors.New("boom"))
	span.End()
}
