package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"CancelDash/internal/config"
	"CancelDash/internal/serviceiface"
)

type GatewayService struct {
	config map[string]interface{}
	server *http.Server
}

func NewGatewayService(cfg map[string]interface{}) serviceiface.Service {
	return &GatewayService{config: cfg}
}

func (s *GatewayService) Name() string {
	return "gateway"
}

func (s *GatewayService) Start() error {
	port := config.Int(s.config, "port", config.DefaultGatewayPort)
	target := config.String(s.config, "dashboard_target",
		fmt.Sprintf("http://localhost:%d", config.DefaultServicePort))

	handler, err := NewGatewayHandler(target)
	if err != nil {
		return err
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		LogInfo("API Gateway started", "addr", s.server.Addr, "dashboard_target", target)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			LogError("Gateway server failed", "error", err)
		}
	}()
	return nil
}

func (s *GatewayService) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
