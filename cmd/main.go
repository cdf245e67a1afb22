package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"vitrine/internal/config"
	httpapi "vitrine/internal/http"
	"vitrine/internal/repository"
	"vitrine/internal/service"
	"vitrine/internal/storage"

	_ "vitrine/docs"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	kv, err := storage.NewFileKV(cfg.DataDir)
	if err != nil {
		log.Fatalf("storage init failed: %v", err)
	}

	store := repository.NewLocalStore(kv)
	if err := store.Load(context.Background()); err != nil {
		log.Fatalf("state load failed: %v", err)
	}
	cartRepo := repository.NewLocalCart(store)
	ordersRepo := repository.NewLocalOrders(store)
	tx := repository.NewLocalTx(store)

	catalogSvc := service.NewCatalogService(store)
	cartSvc := service.NewCartService(store, cartRepo, ordersRepo, tx)
	ordersSvc := service.NewOrderService(ordersRepo)

	srv := httpapi.NewServer(catalogSvc, cartSvc, ordersSvc)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		log.Printf("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
