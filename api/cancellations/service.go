package cancellations

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"CancelDash/api"
	"CancelDash/internal/config"
	"CancelDash/internal/dataset"
	"CancelDash/internal/serviceiface"
)

type CancellationsService struct {
	config  map[string]interface{}
	handler *Handler
	server  *http.Server
}

func NewCancellationsService(cfg map[string]interface{}, store *dataset.Store, exports *dataset.Exports, events EventStream) serviceiface.Service {
	return &CancellationsService{
		config:  cfg,
		handler: NewHandler(store, exports, events),
	}
}

func (s *CancellationsService) Name() string {
	return "cancellations"
}

func (s *CancellationsService) Start() error {
	port := config.Int(s.config, "port", config.DefaultServicePort)
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           NewRouter(s.handler),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		api.LogInfo("Cancellation Dashboard Service started", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			api.LogError("Cancellation Dashboard Service failed", "error", err)
		}
	}()
	return nil
}

func (s *CancellationsService) Stop() error {
	if s.server == nil {
		return nil
	}
	// open event streams would otherwise hold Shutdown until the timeout
	if stopper, ok := s.handler.events.(interface{ Stop() }); ok {
		stopper.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
