package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calorie-counter/internal/config"
	"calorie-counter/internal/dailylog"
	"calorie-counter/internal/models"
	"calorie-counter/internal/nutrition"
	"calorie-counter/internal/storage"
	"calorie-counter/internal/testutil"
	"calorie-counter/internal/widget"
)

var today = time.Date(2025, time.February, 3, 8, 0, 0, 0, time.Local)

const todayKey = "2/3/2025"

func testServer(t *testing.T, resolver *testutil.FakeResolver) (*CalorieServer, *httptest.Server) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Host = "127.0.0.1"

	kv := storage.NewMemoryStorage()
	store, err := dailylog.Load(context.Background(), kv, dailylog.WithClock(testutil.FixedClock(today)))
	require.NoError(t, err)
	s := New(&cfg, kv, store, widget.NewController(resolver, store))

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func noRedirect() *http.Client {
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}

func getBody(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func callTool(t *testing.T, ts *httptest.Server, name string, args map[string]interface{}) (*http.Response, string) {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/mcp", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if resp.StatusCode != http.StatusOK {
		return resp, string(raw)
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(raw, &result))
	require.Len(t, result.Content, 1)
	assert.Equal(t, "text", result.Content[0].Type)
	return resp, result.Content[0].Text
}

func TestPage_RendersEmptyWidget(t *testing.T) {
	_, ts := testServer(t, testutil.NewFakeResolver())

	body := getBody(t, ts.URL+"/")
	assert.Contains(t, body, "Calorie Counter")
	assert.Contains(t, body, "Get Nutrition Info")
	assert.NotContains(t, body, "Total Calories")
}

func TestPage_QueryThenRemove(t *testing.T) {
	_, ts := testServer(t, testutil.NewFakeResolver().With("apple", testutil.Apple()))
	client := noRedirect()

	resp, err := client.PostForm(ts.URL+"/query", url.Values{"query": {"apple"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	body := getBody(t, ts.URL+"/")
	assert.Contains(t, body, todayKey)
	assert.Contains(t, body, "Total Calories: 95 kcal")
	assert.Contains(t, body, "<strong>Food:</strong> apple")

	resp, err = client.PostForm(ts.URL+"/remove", url.Values{"date": {todayKey}, "index": {"0"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	body = getBody(t, ts.URL+"/")
	assert.NotContains(t, body, "Total Calories")
}

func TestPage_EmptyQueryShowsError(t *testing.T) {
	resolver := testutil.NewFakeResolver()
	_, ts := testServer(t, resolver)

	resp, err := noRedirect().PostForm(ts.URL+"/query", url.Values{"query": {"  "}})
	require.NoError(t, err)
	resp.Body.Close()

	body := getBody(t, ts.URL+"/")
	assert.Contains(t, body, "Please enter a food item.")
	assert.Empty(t, resolver.Calls())
}

func TestPage_FetchErrorShowsMessage(t *testing.T) {
	resolver := testutil.NewFakeResolver()
	resolver.Err = &nutrition.FetchError{StatusCode: 401}
	_, ts := testServer(t, resolver)

	resp, err := noRedirect().PostForm(ts.URL+"/query", url.Values{"query": {"apple"}})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Contains(t, getBody(t, ts.URL+"/"), "Failed to fetch data")
}

func TestAPI_AddListTotalDelete(t *testing.T) {
	resolver := testutil.NewFakeResolver().
		With("apple", testutil.Apple()).
		With("toast", models.FoodRecord{FoodName: "toast", Calories: 80})
	_, ts := testServer(t, resolver)

	for _, q := range []string{"apple", "toast"} {
		resp, err := http.Post(ts.URL+"/api/log", "application/json", strings.NewReader(`{"query":"`+q+`"}`))
		require.NoError(t, err)
		var out addLogResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, todayKey, out.Date)
		assert.Len(t, out.Logged, 1)
	}

	var days []models.DaySummary
	require.NoError(t, json.Unmarshal([]byte(getBody(t, ts.URL+"/api/log")), &days))
	require.Len(t, days, 1)
	assert.Equal(t, []models.FoodEntry{{Name: "apple", Calories: 95}, {Name: "toast", Calories: 80}}, days[0].Entries)

	var total totalResponse
	require.NoError(t, json.Unmarshal([]byte(getBody(t, ts.URL+"/api/log/total")), &total))
	assert.Equal(t, totalResponse{Date: todayKey, TotalCalories: 175, Entries: 2}, total)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/log?"+url.Values{"date": {todayKey}, "index": {"0"}}.Encode(), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&days))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, days, 1)
	assert.Equal(t, []models.FoodEntry{{Name: "toast", Calories: 80}}, days[0].Entries)
}

func TestAPI_ErrorStatuses(t *testing.T) {
	resolver := testutil.NewFakeResolver()
	_, ts := testServer(t, resolver)

	resp, err := http.Post(ts.URL+"/api/log", "application/json", strings.NewReader(`{"query":""}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/api/log", "application/json", strings.NewReader(`{`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/log?date=1/1/2020&index=0", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resolver.SetErr(&nutrition.FetchError{StatusCode: 500})
	resp, err = http.Post(ts.URL+"/api/log", "application/json", strings.NewReader(`{"query":"apple"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestMCP_LogFoodAndGetLog(t *testing.T) {
	_, ts := testServer(t, testutil.NewFakeResolver().With("apple", testutil.Apple()))

	resp, text := callTool(t, ts, "log_food", map[string]interface{}{"query": "apple"})
	require.Equal(t, http.StatusOK, resp.StatusCode, text)

	var logged struct {
		Date          string             `json:"date"`
		Entries       []models.FoodEntry `json:"entries"`
		TotalCalories float64            `json:"total_calories"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &logged))
	assert.Equal(t, todayKey, logged.Date)
	assert.Equal(t, 95.0, logged.TotalCalories)

	_, text = callTool(t, ts, "get_log", map[string]interface{}{"date": todayKey})
	var days []models.DaySummary
	require.NoError(t, json.Unmarshal([]byte(text), &days))
	require.Len(t, days, 1)
	assert.Equal(t, 95.0, days[0].TotalCalories)
}

func TestMCP_LookupDoesNotLog(t *testing.T) {
	s, ts := testServer(t, testutil.NewFakeResolver().With("apple", testutil.Apple()))

	resp, text := callTool(t, ts, "lookup_food", map[string]interface{}{"query": "apple"})
	require.Equal(t, http.StatusOK, resp.StatusCode, text)
	assert.Contains(t, text, `"food_name":"apple"`)
	assert.Empty(t, s.store.Snapshot())
}

func TestMCP_RemoveFood(t *testing.T) {
	_, ts := testServer(t, testutil.NewFakeResolver().With("apple", testutil.Apple()))
	callTool(t, ts, "log_food", map[string]interface{}{"query": "apple"})

	resp, text := callTool(t, ts, "remove_food", map[string]interface{}{"date": todayKey, "index": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode, text)
	assert.Equal(t, "[]", strings.TrimSpace(text))

	resp, _ = callTool(t, ts, "remove_food", map[string]interface{}{"date": todayKey, "index": 0})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = callTool(t, ts, "remove_food", map[string]interface{}{"date": todayKey})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMCP_UnknownToolAndInfo(t *testing.T) {
	_, ts := testServer(t, testutil.NewFakeResolver())

	resp, _ := callTool(t, ts, "calculate_carbs", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var info struct {
		Server struct {
			Name string `json:"name"`
		} `json:"server"`
		Tools []string `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(getBody(t, ts.URL+"/mcp")), &info))
	assert.Equal(t, serverName, info.Server.Name)
	assert.Equal(t, []string{"get_log", "log_food", "lookup_food", "remove_food"}, info.Tools)
}
