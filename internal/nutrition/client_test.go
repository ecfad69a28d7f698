package nutrition

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calorie-counter/internal/config"
	"calorie-counter/internal/models"
)

func testConfig(endpoint string) config.NutritionConfig {
	return config.NutritionConfig{
		Endpoint: endpoint,
		AppID:    "test-id",
		AppKey:   "test-key",
	}
}

type recordingObserver struct {
	events []LookupEvent
}

func (o *recordingObserver) OnLookupComplete(e LookupEvent) { o.events = append(o.events, e) }

func TestClient_Resolve_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "test-id", r.Header.Get("x-app-id"))
		assert.Equal(t, "test-key", r.Header.Get("x-app-key"))

		var req nutrientsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "1 apple and 2 eggs", req.Query)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"foods":[{"food_name":"apple","nf_calories":95},{"food_name":"egg","nf_calories":143}]}`))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	client := NewClient(testConfig(srv.URL), obs)

	foods, err := client.Resolve(context.Background(), "1 apple and 2 eggs")
	require.NoError(t, err)
	require.Len(t, foods, 2)
	assert.Equal(t, models.FoodEntry{Name: "apple", Calories: 95}, foods[0].Entry())
	assert.Equal(t, models.FoodEntry{Name: "egg", Calories: 143}, foods[1].Entry())

	require.Len(t, obs.events, 1)
	assert.True(t, obs.events[0].Success)
	assert.Equal(t, 2, obs.events[0].Records)
	assert.NotEmpty(t, obs.events[0].RequestID)
}

func TestClient_Resolve_EmptyQueryNeverCallsService(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), nil)

	for _, q := range []string{"", "   ", "\t\n"} {
		foods, err := client.Resolve(context.Background(), q)
		assert.ErrorIs(t, err, ErrEmptyQuery)
		assert.Nil(t, foods)
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestClient_Resolve_NonSuccessIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"unauthorized"}`))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	client := NewClient(testConfig(srv.URL), obs)

	_, err := client.Resolve(context.Background(), "apple")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusUnauthorized, fe.StatusCode)

	require.Len(t, obs.events, 1)
	assert.False(t, obs.events[0].Success)
}

func TestClient_Resolve_UnreachableIsFetchError(t *testing.T) {
	client := NewClient(testConfig("http://127.0.0.1:1"), nil)

	_, err := client.Resolve(context.Background(), "apple")
	assert.ErrorIs(t, err, ErrFetch)
}

func TestClient_Resolve_MalformedBodyDegradesToEmpty(t *testing.T) {
	bodies := []string{`not json`, `{}`, `{"foods":null}`, ``}
	for _, body := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		client := NewClient(testConfig(srv.URL), nil)
		foods, err := client.Resolve(context.Background(), "apple")
		srv.Close()

		require.NoError(t, err, "body %q", body)
		assert.NotNil(t, foods, "body %q", body)
		assert.Empty(t, foods, "body %q", body)
	}
}

func TestClient_Resolve_OneCallPerInvocation(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"foods":[]}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), nil)
	_, err := client.Resolve(context.Background(), "apple")
	require.NoError(t, err)
	_, err = client.Resolve(context.Background(), "apple")
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Resolve_SendsRawQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req nutrientsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "  pasta  ", req.Query)
		w.Write([]byte(`{"foods":[]}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), nil)
	_, err := client.Resolve(context.Background(), "  pasta  ")
	require.NoError(t, err)
}

func TestLogObserver_WritesLine(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogObserver(&buf)

	obs.OnLookupComplete(LookupEvent{RequestID: "abc", QueryLen: 5, Records: 1, LatencyMs: 12, Success: true})
	obs.OnLookupComplete(LookupEvent{RequestID: "def", StatusCode: 500})

	out := buf.String()
	assert.Contains(t, out, "nutrition_lookup id=abc query_len=5 records=1 latency_ms=12 status=ok")
	assert.Contains(t, out, "id=def")
	assert.Contains(t, out, "status=err:500")
}
