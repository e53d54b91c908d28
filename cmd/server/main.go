package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/sshcollectorpro/fortidriver/api/router"
	"github.com/sshcollectorpro/fortidriver/internal/config"
	"github.com/sshcollectorpro/fortidriver/internal/database"
	"github.com/sshcollectorpro/fortidriver/internal/service"
	"github.com/sshcollectorpro/fortidriver/pkg/logger"
	"github.com/sshcollectorpro/fortidriver/simulate"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.WithField("version", router.Version).Infof("Starting fortidriver server")

	if err := database.InitSQLite(cfg.Database.SQLite); err != nil {
		logger.WithError(err).Fatalf("Failed to initialize database")
	}
	defer database.Close()

	sim := &simulatorHolder{}
	if cfg.Server.SimulateEnable {
		sim.start(cfg.Server.SimulateConfig)
	}
	defer sim.stop()

	open := service.NewOpener(cfg.DriverOptions(), nil)
	batch := service.NewBatchService(cfg.Batch, open)
	backup := service.NewBackupService(cfg, open, nil)
	r := router.SetupRouter(cfg.Server.Mode, batch, backup)

	server := &http.Server{
		Addr:           cfg.GetServerAddr(),
		Handler:        r,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	go func() {
		logger.WithFields(logrus.Fields{"addr": server.Addr, "mode": cfg.Server.Mode}).Infof("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatalf("Failed to start server")
		}
	}()

	// 配置热更新只刷新日志与模拟器开关，会话参数与存储在重启后生效
	stopWatch := watchFile(*configPath, func() {
		newCfg, err := config.Load(*configPath)
		if err != nil {
			logger.WithError(err).Warnf("Config reload failed")
			return
		}
		if err := logger.Init(newCfg.Log); err != nil {
			logger.WithError(err).Warnf("Logger reload failed")
		}
		switch {
		case newCfg.Server.SimulateEnable && !sim.running():
			sim.start(newCfg.Server.SimulateConfig)
		case !newCfg.Server.SimulateEnable && sim.running():
			sim.stop()
		}
		logger.Infof("Config reloaded")
	})
	defer stopWatch()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Errorf("Server forced to shutdown")
	} else {
		logger.Infof("Server shutdown complete")
	}
}

// simulatorHolder 可随配置启停的内置模拟器
type simulatorHolder struct {
	mu  sync.Mutex
	srv *simulate.Server
}

func (h *simulatorHolder) running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.srv != nil
}

func (h *simulatorHolder) start(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.srv != nil {
		return
	}

	simCfg := simulate.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		loaded, err := simulate.LoadConfig(path)
		if err != nil {
			logger.WithError(err).WithField("path", path).Warnf("Simulate: failed to load config, skip")
			return
		}
		simCfg = *loaded
	}
	srv, err := simulate.Start(simCfg)
	if err != nil {
		logger.WithError(err).Warnf("Simulate: failed to start")
		return
	}
	h.srv = srv
	logger.WithFields(logrus.Fields{"addr": srv.Addr(), "hostname": srv.Hostname()}).Infof("Simulate: started")
}

func (h *simulatorHolder) stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.srv != nil {
		h.srv.Stop()
		h.srv = nil
	}
}

// watchFile 文件变更后去抖调用 onChange，返回停止函数
func watchFile(path string, onChange func()) func() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.WithError(err).Warnf("Config watch init failed")
		return func() {}
	}
	if err := watcher.Add(path); err != nil {
		logger.WithError(err).WithField("path", path).Warnf("Config watch add failed")
		_ = watcher.Close()
		return func() {}
	}

	done := make(chan struct{})
	go func() {
		var debounce *time.Timer
		for {
			select {
			case <-done:
				if debounce != nil {
					debounce.Stop()
				}
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					if debounce != nil {
						debounce.Stop()
					}
					debounce = time.AfterFunc(300*time.Millisecond, onChange)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.WithError(err).Warnf("Config watch error")
			}
		}
	}()

	return func() {
		close(done)
		_ = watcher.Close()
	}
}
