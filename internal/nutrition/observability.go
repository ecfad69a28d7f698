package nutrition

import (
	"fmt"
	"io"
	"time"
)

// LookupEvent records metadata about a single nutrition service call.
type LookupEvent struct {
	RequestID  string
	QueryLen   int
	Records    int
	StatusCode int
	LatencyMs  int64
	Success    bool
}

// Observer receives events about nutrition service calls.
type Observer interface {
	OnLookupComplete(event LookupEvent)
}

// LogObserver writes lookup events to an io.Writer.
type LogObserver struct {
	w io.Writer
}

func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{w: w}
}

func (o *LogObserver) OnLookupComplete(event LookupEvent) {
	ts := time.Now().UTC().Format(time.RFC3339)
	status := "ok"
	if !event.Success {
		status = fmt.Sprintf("err:%d", event.StatusCode)
	}
	fmt.Fprintf(o.w, "[%s] nutrition_lookup id=%s query_len=%d records=%d latency_ms=%d status=%s\n",
		ts, event.RequestID, event.QueryLen, event.Records, event.LatencyMs, status)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) OnLookupComplete(LookupEvent) {}
