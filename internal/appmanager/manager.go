package appmanager

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"CancelDash/api"
	"CancelDash/api/cancellations"
	"CancelDash/internal/config"
	"CancelDash/internal/dashboard"
	"CancelDash/internal/dataset"
	"CancelDash/internal/jobs"
	"CancelDash/internal/logger"
	"CancelDash/internal/resource"
	"CancelDash/internal/serviceiface"
)

// Shared holds the state every service works against.
type Shared struct {
	Store   *dataset.Store
	Exports *dataset.Exports
	Events  *dashboard.Broadcaster
}

// NewShared wires the dataset store to the event broadcaster.
func NewShared() *Shared {
	ttl := config.DefaultExportTTL
	if v := os.Getenv("EXPORT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			ttl = d
		}
	}
	s := &Shared{
		Store:   dataset.NewStore(),
		Exports: dataset.NewExports(ttl),
		Events:  dashboard.NewBroadcaster(config.DefaultPingInterval),
	}
	s.Store.OnPublish(s.Events.DatasetUpdated)
	return s
}

var serviceConstructors = map[string]func(map[string]interface{}, *Shared) serviceiface.Service{
	"logger": func(cfg map[string]interface{}, _ *Shared) serviceiface.Service {
		return logger.NewLoggerService(cfg)
	},
	"cancellations": func(cfg map[string]interface{}, sh *Shared) serviceiface.Service {
		return cancellations.NewCancellationsService(cfg, sh.Store, sh.Exports, sh.Events)
	},
	"cron": func(cfg map[string]interface{}, sh *Shared) serviceiface.Service {
		return jobs.NewCronService(cfg, sh.Store, sh.Exports)
	},
	"gateway": func(cfg map[string]interface{}, _ *Shared) serviceiface.Service {
		return api.NewGatewayService(cfg)
	},
	"resourcemanager": func(cfg map[string]interface{}, sh *Shared) serviceiface.Service {
		rm := resource.NewResourceManagerService(cfg)
		rm.AddResource("dataset_rows", func() int {
			snap, err := sh.Store.Current()
			if err != nil {
				return 0
			}
			return snap.Table.Len()
		})
		rm.AddResource("history_entries", func() int { return len(sh.Store.History()) })
		rm.AddResource("pending_exports", sh.Exports.Len)
		rm.AddResource("sse_clients", sh.Events.ClientCount)
		return rm
	},
}

// ------------------- MANAGER -------------------

type AppManager struct {
	services []serviceiface.Service
	shared   *Shared
	mu       sync.Mutex
}

func NewAppManager(shared *Shared) *AppManager {
	return &AppManager{
		services: make([]serviceiface.Service, 0),
		shared:   shared,
	}
}

func (am *AppManager) RegisterService(s serviceiface.Service) {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.services = append(am.services, s)
}

// StartAll starts services in registration order. On failure the services
// already started are stopped again.
func (am *AppManager) StartAll() error {
	am.mu.Lock()
	defer am.mu.Unlock()

	for i, service := range am.services {
		logger.L().Infow("starting service", "service", service.Name())
		if err := service.Start(); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = am.services[j].Stop()
			}
			return fmt.Errorf("failed to start service %s: %w", service.Name(), err)
		}
	}
	return nil
}

// StopAll stops services in reverse order and reports the first failure.
func (am *AppManager) StopAll() error {
	am.mu.Lock()
	defer am.mu.Unlock()

	var firstErr error
	for i := len(am.services) - 1; i >= 0; i-- {
		svc := am.services[i]
		if err := svc.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to stop service %s: %w", svc.Name(), err)
		}
	}
	if am.shared != nil {
		am.shared.Events.Stop()
	}
	return firstErr
}

// ------------------- YAML CONFIG -------------------

type ServiceSequencer struct {
	Services []ServiceConfig `yaml:"services"`
}

type ServiceConfig struct {
	Name       string                 `yaml:"name"`
	StartOrder int                    `yaml:"start_order"`
	Config     map[string]interface{} `yaml:"config"`
}

func LoadServiceSequence(path string) ([]ServiceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seq ServiceSequencer
	if err := yaml.Unmarshal(data, &seq); err != nil {
		return nil, fmt.Errorf("invalid service sequence %s: %w", path, err)
	}

	// sort by start_order
	sort.SliceStable(seq.Services, func(i, j int) bool {
		return seq.Services[i].StartOrder < seq.Services[j].StartOrder
	})

	return seq.Services, nil
}

func (am *AppManager) AutoRegisterServices(configs []ServiceConfig) {
	for _, svc := range configs {
		constructor, ok := serviceConstructors[svc.Name]
		if !ok {
			logger.L().Warnw("unknown service in sequence, skipping", "service", svc.Name)
			continue
		}
		am.RegisterService(constructor(svc.Config, am.shared))
	}

	for _, svc := range am.services {
		if l, ok := svc.(*logger.LoggerService); ok {
			logger.SetGlobalLogger(l)
			break
		}
	}
}

func (am *AppManager) GetServiceByName(name string) serviceiface.Service {
	for _, svc := range am.services {
		if svc.Name() == name {
			return svc
		}
	}
	return nil
}
