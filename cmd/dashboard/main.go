package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"student-grade-api/config"
	"student-grade-api/dashboard"
	"student-grade-api/logging"
	"student-grade-api/services"
)

func main() {
	var hashPassword string
	flag.StringVar(&hashPassword, "hash-password", "", "print the bcrypt hash of a password for ADMIN_PASSWORD_HASH and exit")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	auth := services.NewAuthService(cfg.JWT)

	if hashPassword != "" {
		hash, err := auth.HashPassword(hashPassword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	gin.SetMode(gin.ReleaseMode)
	srv := dashboard.NewServer(cfg.Dashboard, dashboard.NewClient(cfg.Dashboard.APIURL, nil), auth, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Dashboard.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("dashboard listening",
		zap.String("addr", server.Addr),
		zap.String("api", cfg.Dashboard.APIURL),
		zap.Bool("admin_protected", cfg.Dashboard.AdminProtected()),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("dashboard stopped", zap.Error(err))
	}
}
