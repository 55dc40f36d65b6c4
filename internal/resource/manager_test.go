package resource

import (
	"reflect"
	"testing"
)

func TestResourceManager_Snapshot(t *testing.T) {
	rm := NewResourceManagerService(map[string]interface{}{"heartbeat_seconds": 1})
	rows := 3
	rm.AddResource("dataset_rows", func() int { return rows })
	rm.AddResource("sse_clients", func() int { return 0 })

	if got := rm.ListResources(); !reflect.DeepEqual(got, []string{"dataset_rows", "sse_clients"}) {
		t.Fatalf("unexpected resources %v", got)
	}
	rows = 5
	if got := rm.Snapshot()["dataset_rows"]; got != 5 {
		t.Fatalf("gauge want=5 got=%d", got)
	}

	rm.RemoveResource("sse_clients")
	if len(rm.Snapshot()) != 1 {
		t.Fatalf("resource not removed")
	}

	if err := rm.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	rm.logHeartbeat()
	rm.Stop()
	rm.Stop()
}
