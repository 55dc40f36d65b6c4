package dashboard

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"CancelDash/internal/dataset"
	"CancelDash/internal/pipeline"
)

func readEvent(t *testing.T, r *bufio.Reader) map[string]interface{} {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read event: %v", err)
		}
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev map[string]interface{}
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("decode event %q: %v", line, err)
		}
		return ev
	}
}

func TestBroadcaster_DatasetUpdated(t *testing.T) {
	b := NewBroadcaster(0)
	defer b.Stop()

	srv := httptest.NewServer(http.HandlerFunc(b.HandleSSE))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "?client_id=tab-1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type want=text/event-stream got=%s", ct)
	}

	r := bufio.NewReader(resp.Body)
	if ev := readEvent(t, r); ev["type"] != EventConnected || ev["client_id"] != "tab-1" {
		t.Fatalf("unexpected first event %v", ev)
	}
	if n := b.ClientCount(); n != 1 {
		t.Fatalf("clients want=1 got=%d", n)
	}

	store := dataset.NewStore()
	store.OnPublish(b.DatasetUpdated)
	store.Replace(pipeline.Table{Rows: []pipeline.Row{{Region: "N"}, {Region: "S"}}}, "jan.xlsx", 10)

	ev := readEvent(t, r)
	if ev["type"] != EventDatasetUpdated || ev["filename"] != "jan.xlsx" || ev["rows"] != float64(2) {
		t.Fatalf("unexpected update event %v", ev)
	}
}

func TestBroadcaster_Ping(t *testing.T) {
	b := NewBroadcaster(20 * time.Millisecond)
	defer b.Stop()

	srv := httptest.NewServer(http.HandlerFunc(b.HandleSSE))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	r := bufio.NewReader(resp.Body)
	readEvent(t, r)
	if ev := readEvent(t, r); ev["type"] != EventPing {
		t.Fatalf("want ping got %v", ev)
	}
}

func TestBroadcaster_PublishWithoutClients(t *testing.T) {
	b := NewBroadcaster(0)
	defer b.Stop()
	b.Publish(EventDatasetUpdated, map[string]interface{}{"rows": 1})
	if b.ClientCount() != 0 {
		t.Fatalf("unexpected clients")
	}
}
