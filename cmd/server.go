package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eryajf/qaloop/internal/cache"
	"github.com/eryajf/qaloop/internal/config"
	"github.com/eryajf/qaloop/internal/database"
	"github.com/eryajf/qaloop/internal/llm"
	"github.com/eryajf/qaloop/internal/resolver"
	"github.com/eryajf/qaloop/internal/server"
	"github.com/eryajf/qaloop/internal/store"
)

// serverCmd 启动 HTTP 服务
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动问答解析 HTTP 服务",
	RunE:  runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Server.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Sugar()

	// 持久层:启动时建立一次连接,句柄注入到各组件
	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)
	queryStore := store.NewQueryStore(db)

	// 缓存层:Redis 不可用时退化为空缓存,服务继续启动
	var qaCache resolver.Cache = cache.NoopCache{}
	var cachePing server.Pinger
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(
			cfg.Redis.Addr,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Cache.TTLDuration(),
			log,
		)
		if err != nil {
			log.Warnf("Redis unavailable, running without cache: %v", err)
		} else {
			defer rc.Close()
			qaCache = rc
			cachePing = rc
		}
	}

	gen := llm.NewGenerator(cfg.LLM.Provider, &llm.Config{
		Model:   cfg.LLM.Model,
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.TimeoutDuration(),
	}, log)

	rsv := resolver.NewResolver(qaCache, queryStore, gen, log)
	srv := server.NewHTTPGinServer(cfg, rsv, cachePing, queryStore, log)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// 等待退出信号,优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}

// newLogger 创建 zap 日志器
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
