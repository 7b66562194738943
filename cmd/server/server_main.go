package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ggeorgiev0/backend-base/internal/realtime"
	"github.com/ggeorgiev0/backend-base/internal/shared/config"
	"github.com/ggeorgiev0/backend-base/internal/shared/httperr"
	"github.com/ggeorgiev0/backend-base/internal/shared/infrastructure/db"
	"github.com/ggeorgiev0/backend-base/internal/shared/logs"
	"github.com/ggeorgiev0/backend-base/internal/shared/security"
	transporthttp "github.com/ggeorgiev0/backend-base/internal/shared/transport/http"
	"github.com/ggeorgiev0/backend-base/internal/shared/transport/http/middleware"
	"github.com/ggeorgiev0/backend-base/internal/shared/validate"
	"github.com/ggeorgiev0/backend-base/internal/users"
	"github.com/ggeorgiev0/backend-base/modules/kit/logx"
)

func main() {
	cfg := config.Load("")
	zapLogger := logs.Init(cfg.App.Name, cfg.Log, cfg.App.Env)
	logs.Info("conf loaded", zap.String("env", string(cfg.App.Env)))

	production := cfg.App.Env.IsProduction()
	if production {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logx.NewZapLogger(zapLogger)

	gormDB, err := db.Open(cfg.MySQL)
	if err != nil {
		logs.Error("open db failed", zap.Error(err))
		panic(err)
	}

	if err := gormDB.AutoMigrate(&users.User{}); err != nil {
		logs.Error("migrate failed", zap.Error(err))
		panic(err)
	}

	tokens, err := security.NewManager(cfg.JWT)
	if err != nil {
		logs.Error("jwt manager init failed", zap.Error(err))
		panic(err)
	}

	classifier := httperr.NewClassifier(production)
	errLogger := httperr.NewErrorLogger(logger, production)

	host := cfg.HTTPServer.Host
	if host == "" {
		host = "0.0.0.0"
	}
	addr := fmt.Sprintf("%s:%d", host, cfg.HTTPServer.Port)
	server := transporthttp.NewServer(addr, gin.New(), logger, classifier, errLogger)

	var hub *realtime.Hub
	var publisher users.Publisher
	if cfg.Realtime.Enabled {
		hub = realtime.NewHub(logger, cfg.Realtime.SendBuffer)
		publisher = hub
		server.Group().GET("/realtime", gin.WrapH(hub))
	}

	userService := users.NewService(
		users.NewRepository(gormDB),
		publisher,
		security.EncryptPassword,
		security.RandSeq,
	)
	controller := users.NewController(userService, validate.NewPipe(validate.DefaultOptions()))

	api := server.Group().Group("/api/v1")
	controller.RegisterRoutes(api, middleware.RequireAuth(tokens))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logs.Info("http server started", zap.String("addr", addr))
		if err := server.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- fmt.Errorf("http serve failed: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logs.Info("收到退出信号，准备优雅退出")
	case err := <-errCh:
		if err != nil {
			logs.Error("服务异常退出", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logs.Error("http shutdown failed", zap.Error(err))
	}
	if hub != nil {
		hub.Close()
	}
	_ = zapLogger.Sync()
}
