package telemetry

import (
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/trezcool/tuitioncenter/core"
	logsvc "github.com/trezcool/tuitioncenter/services/logger"
)

func sampleDecision(s sdktrace.Sampler) sdktrace.SamplingDecision {
	return s.ShouldSample(sdktrace.SamplingParameters{
		ParentContext: context.Background(),
		TraceID:       oteltrace.TraceID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		Name:          "telemetry-test",
	}).Decision
}

func TestParseSampler(t *testing.T) {
	tests := []struct {
		name, sampler, arg string
		want               sdktrace.SamplingDecision
	}{
		{name: "always off", sampler: "always_off", want: sdktrace.Drop},
		{name: "always on", sampler: "always_on", want: sdktrace.RecordAndSample},
		{name: "ratio clamps to 1", sampler: "traceidratio", arg: "2", want: sdktrace.RecordAndSample},
		{name: "ratio clamps to 0", sampler: "traceidratio", arg: "-1", want: sdktrace.Drop},
		{name: "parent based zero", sampler: "parentbased_traceidratio", arg: "0", want: sdktrace.Drop},
		{name: "default samples everything", sampler: "", want: sdktrace.RecordAndSample},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sampleDecision(parseSampler(tt.sampler, tt.arg)))
		})
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("TELEMETRY_TEST_INT", "42")
	assert.Equal(t, 42, envInt("TELEMETRY_TEST_INT", 1))
	t.Setenv("TELEMETRY_TEST_INT", "bad")
	assert.Equal(t, 7, envInt("TELEMETRY_TEST_INT", 7))
}

func TestInitAndMiddleware(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	conf := &core.Config{Env: "TEST", Build: "test", Debug: true}
	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "TEST : ", 0), conf)

	shutdown, err := Init(context.Background(), "", conf, logger)
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	var traced bool
	h := HTTPMiddleware("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traced = oteltrace.SpanContextFromContext(r.Context()).IsValid()
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/subjects", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, traced)
}
