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

	intconfig "tourbook/internal/config"
	router "tourbook/internal/http"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}
	if env.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	db := intconfig.ConnectDB(env)
	defer intconfig.CloseDB()

	if err := intconfig.EnsureIndexes(db); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}

	// Router (Gin engine)
	r := router.NewRouter(env, db)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	log.Println("server stopped cleanly")
}
