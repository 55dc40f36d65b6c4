package resource

import (
	"runtime"
	"sort"
	"sync"
	"time"

	"CancelDash/internal/config"
	"CancelDash/internal/logger"
	"CancelDash/internal/serviceiface"
)

// Gauge reports the current size of a tracked resource.
type Gauge func() int

// ResourceManager logs a heartbeat with the size of every registered resource.
type ResourceManager struct {
	resources         map[string]Gauge
	mu                sync.RWMutex
	stopChan          chan struct{}
	stopOnce          sync.Once
	heartbeatInterval time.Duration
}

func NewResourceManagerService(cfg map[string]interface{}) *ResourceManager {
	interval := time.Duration(config.Int(cfg, "heartbeat_seconds", 60)) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	return &ResourceManager{
		resources:         make(map[string]Gauge),
		stopChan:          make(chan struct{}),
		heartbeatInterval: interval,
	}
}

var _ serviceiface.Service = (*ResourceManager)(nil)

func (rm *ResourceManager) Name() string { return "resourcemanager" }

func (rm *ResourceManager) Start() error {
	logger.Audit("resource manager started", "interval", rm.heartbeatInterval.String(), "resources", rm.ListResources())
	go rm.heartbeatLoop()
	return nil
}

func (rm *ResourceManager) Stop() error {
	rm.stopOnce.Do(func() { close(rm.stopChan) })
	return nil
}

func (rm *ResourceManager) heartbeatLoop() {
	ticker := time.NewTicker(rm.heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rm.stopChan:
			return
		case <-ticker.C:
			rm.logHeartbeat()
		}
	}
}

func (rm *ResourceManager) logHeartbeat() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	kv := []interface{}{
		"goroutines", runtime.NumGoroutine(),
		"heap_alloc_bytes", mem.HeapAlloc,
	}
	snap := rm.Snapshot()
	for _, key := range rm.ListResources() {
		kv = append(kv, key, snap[key])
	}
	logger.L().Infow("heartbeat", kv...)
}

func (rm *ResourceManager) AddResource(key string, gauge Gauge) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.resources[key] = gauge
}

func (rm *ResourceManager) RemoveResource(key string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	delete(rm.resources, key)
}

// ListResources returns the registered names, sorted.
func (rm *ResourceManager) ListResources() []string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	keys := make([]string, 0, len(rm.resources))
	for key := range rm.resources {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot reads every gauge once.
func (rm *ResourceManager) Snapshot() map[string]int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	out := make(map[string]int, len(rm.resources))
	for key, gauge := range rm.resources {
		out[key] = gauge()
	}
	return out
}
