package main

import (
	"fmt"
	"net"
	"net/http"
	"os"

	"PArena/global"
	"PArena/logger"
	"PArena/middleware"
	"PArena/service/natsx"
	"PArena/service/world"
	"PArena/service/world/handlers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	// 1) Configuration: defaults <- yaml file <- env
	cfg, err := global.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.Errorf("load config: %v", err)
		os.Exit(1)
	}
	global.ConfigIds()

	// 2) Optional NATS event mirror
	var mirror world.EventMirror
	if cfg.Nats.Enabled {
		m, err := natsx.NewMirror(cfg.Nats)
		if err != nil {
			// the world keeps running without the mirror
			logger.Warnf("nats mirror disabled: %v", err)
		} else {
			defer m.Close()
			mirror = m
			logger.Infof("[NATS] mirroring events to %s.*", cfg.Nats.SubjectPrefix)
		}
	}

	// 3) World server + frame handlers
	srv := world.NewServer(cfg, mirror, prometheus.DefaultRegisterer)
	defer srv.Shutdown()
	handlers.RegisterAll(srv)

	// 4) gRPC health service for orchestrator probes
	go func() {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GrpcPort))
		if err != nil {
			logger.Errorf("gRPC listen failed: %v", err)
			os.Exit(1)
		}
		gs := grpc.NewServer()

		healthServer := health.NewServer()
		healthpb.RegisterHealthServer(gs, healthServer)
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		healthServer.SetServingStatus("arena.WorldGateway", healthpb.HealthCheckResponse_SERVING)

		logger.Infof("[gRPC] listening on :%d", cfg.GrpcPort)
		if err := gs.Serve(lis); err != nil {
			logger.Errorf("gRPC server failed: %v", err)
			os.Exit(1)
		}
	}()

	// 5) HTTP + WebSocket
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/space", middleware.Origin(cfg.AllowedOrigins), srv.HandleWS) // e.g. ws://localhost:8080/space
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"gateway":      srv.GwID(),
			"participants": srv.Registry().Len(),
		})
	})

	logger.Infof("[HTTP] gateway %s listening on :%d", cfg.GatewayNodeId, cfg.Port)
	if err := r.Run(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Errorf("HTTP server failed: %v", err)
		os.Exit(1)
	}
}
