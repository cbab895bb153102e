package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"admin-dashboard/config"
	"admin-dashboard/internal/api"
	"admin-dashboard/internal/audit"
	"admin-dashboard/internal/broker"
	"admin-dashboard/internal/gateway"
	"admin-dashboard/internal/session"
	"admin-dashboard/internal/store"
	"admin-dashboard/internal/util"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting admin dashboard")

	tp, err := util.InitTracer("admin-dashboard", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	auditLog, err := audit.NewLog(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to audit database: %v", err)
	}
	defer auditLog.Close()
	log.Println("Audit database connected")

	storage, err := session.NewRedisStorage(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer storage.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer producer.Close()
	eventPublisher := broker.NewEventPublisher(producer)
	log.Println("Kafka producer initialized")

	// The gateway reads its bearer token from the session store; the
	// session store performs auth calls through the same gateway.
	var sessionStore *session.Store
	client := gateway.NewClient(cfg.Upstream.BaseURL, &http.Client{Timeout: cfg.Upstream.Timeout}, tokenSourceFunc(func() string {
		if sessionStore == nil {
			return ""
		}
		return sessionStore.Token()
	}))
	sessionStore = session.NewStore(client, storage)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := sessionStore.RestoreFromStorage(ctx); err != nil {
		log.Printf("Session restore failed: %v", err)
	}
	cancel()

	orders := store.NewOrders(client, eventPublisher)
	products := store.NewProducts(client, eventPublisher)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(sessionStore, orders, products, auditLog)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// tokenSourceFunc adapts a func to gateway.TokenSource.
type tokenSourceFunc func() string

func (f tokenSourceFunc) Token() string { return f() }
