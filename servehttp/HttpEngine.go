package servehttp

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var shutdownGracePeriod = 3 * time.Second

// StartHTTPServer serves the engine until SIGINT or SIGTERM arrives,
// then shuts down gracefully. The bind address comes from SERVICE_ADDR,
// defaulting to ":8080".
func StartHTTPServer(engine *gin.Engine) {
	addr := os.Getenv("SERVICE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("listen on %s: %v", addr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	// SIGKILL can not be caught
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Infoln("shutdown signal has been received, the service is exiting")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("http server shutdown failed: %v", err)
	}
	logrus.Infoln("http server is shutdown gracefully, new requests will be rejected")

	<-ctx.Done()
	logrus.Infoln("service exited")
}
