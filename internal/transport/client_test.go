package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factline/registry/internal/transport"
	"github.com/factline/registry/pkg/errors"
	"github.com/factline/registry/pkg/sources"
)

func newClient(opts ...transport.Option) *transport.Client {
	base := []transport.Option{
		transport.WithBudget(sources.Budget{}), // no throttling in tests
	}
	return transport.New("test-source", append(base, opts...)...)
}

func TestGetRetriesTransient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	body, err := newClient().Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newClient().Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newClient().Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.False(t, errors.IsTransient(err))
	assert.Equal(t, int32(1), calls.Load(), "4xx fails immediately")

	var se *errors.SourceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "test-source", se.Source)
}

func TestGetJSONParseFailureIsNotTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	var out map[string]any
	err := newClient().GetJSON(context.Background(), srv.URL, &out)
	require.Error(t, err)
	assert.False(t, errors.IsTransient(err))
}

func TestGetJSONDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"Environmental Protection Agency","acronym":"EPA"}`))
	}))
	defer srv.Close()

	var out struct {
		Name    string `json:"name"`
		Acronym string `json:"acronym"`
	}
	require.NoError(t, newClient().GetJSON(context.Background(), srv.URL, &out))
	assert.Equal(t, "EPA", out.Acronym)
}

func TestAuthApplied(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newClient(transport.WithAuth(&transport.BearerAuth{}, "sekret"))
	_, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Bearer sekret", gotAuth)
}

func TestGetCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newClient().Get(ctx, srv.URL)
	require.Error(t, err)
}

func TestLimiterThrottles(t *testing.T) {
	l := transport.NewLimiter(sources.Budget{RequestsPerSecond: 100, Burst: 2})

	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow(), "burst of 2 exhausted")

	// Refills within a few ticks at 100 rps.
	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
}

func TestLimiterZeroRateNeverBlocks(t *testing.T) {
	l := transport.NewLimiter(sources.Budget{})
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow())
	}
	require.NoError(t, l.Wait(context.Background()))
}

func TestLimiterWaitHonorsContext(t *testing.T) {
	l := transport.NewLimiter(sources.Budget{RequestsPerSecond: 0.001, Burst: 1})
	require.NoError(t, l.Wait(context.Background()), "first token from burst")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
