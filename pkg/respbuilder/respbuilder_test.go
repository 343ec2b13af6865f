package respbuilder

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	ctx := Inject(context.Background(), Tracer{AppTraceID: "trace-1"})

	resp := Error(ctx, ErrMalformedForm, fmt.Errorf("no boundary"))
	assert.Equal(t, "07", resp.Err.Code)
	assert.Equal(t, "no boundary", resp.Err.Debug)
	assert.Equal(t, "trace-1", resp.Err.TraceID)

	resp = Error(ctx, ErrKind(99), fmt.Errorf("secret"))
	assert.Equal(t, "XX", resp.Err.Code)
	assert.Empty(t, resp.Err.Debug)
}

func TestWriteError(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r = r.WithContext(Inject(r.Context(), Tracer{AppTraceID: "trace-2"}))
	w := httptest.NewRecorder()

	WriteError(w, r, ErrPayloadTooLarge, fmt.Errorf("too big"), true)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "trace-2", w.Header().Get("Tracer-ID"))

	var body HTTPError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "06", body.Err.Code)
	assert.Equal(t, "too big", body.Err.Debug)
}

func TestWriteError_NoDebug(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	w := httptest.NewRecorder()

	WriteError(w, r, ErrUnhandled, fmt.Errorf("dial tcp 10.0.0.1:587: i/o timeout"), false)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.1")

	var body HTTPError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "01", body.Err.Code)
	assert.Empty(t, body.Err.Debug)
}

func TestReasonMap(t *testing.T) {
	codes := map[ErrKind]string{
		ErrUnhandled:        "01",
		ErrValidation:       "02",
		ErrResourceNotFound: "04",
		ErrPayloadTooLarge:  "06",
		ErrMalformedForm:    "07",
	}

	assert.Len(t, ReasonMap, len(codes))
	for kind, code := range codes {
		assert.Equal(t, code, ReasonMap[kind].Code)
	}
}

func TestSuccess(t *testing.T) {
	ctx := Inject(context.Background(), Tracer{AppTraceID: "trace-3"})
	resp := Success(ctx, map[string]string{"status": "ok"})
	assert.Equal(t, "trace-3", resp.TraceID)

	_, ok := Extract(context.Background())
	assert.False(t, ok)
	assert.Equal(t, Tracer{}, MustExtract(context.Background()))
}
