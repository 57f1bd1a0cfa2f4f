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

	"shadowtaxi/config"
	"shadowtaxi/level"
	"shadowtaxi/score"
	"shadowtaxi/server"
)

// ShadowTaxi 入口：读取配置与关卡，启动 HTTP + WebSocket 服务，并初始化房间管理器
func main() {
	var cfgPath, addr string
	flag.StringVar(&cfgPath, "config", "", "path to JSON config file (optional)")
	flag.StringVar(&addr, "addr", "", "server listen address, overrides server.addr, e.g. :8080")
	flag.Parse()

	if err := config.Load(cfgPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// 使用第三方 zap 日志库写入滚动日志文件
	if err := server.InitLogger(config.Log()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer server.SyncLogger()

	game, err := config.Game()
	if err != nil {
		server.Log.Fatalw("invalid game config", "err", err)
	}
	lvCfg := config.Level()
	lv, err := level.Load(lvCfg.ObjectsFile, lvCfg.WeatherFile)
	if err != nil {
		server.Log.Fatalw("load level", "err", err)
	}
	store, err := score.New(config.Score())
	if err != nil {
		server.Log.Fatalw("open score store", "err", err)
	}
	defer store.Close()

	srvCfg := config.Server()
	if addr != "" {
		srvCfg.Addr = addr
	}

	rm := server.InitRoomManager(server.Deps{
		Game:   game,
		Level:  lv,
		Scores: store,
		Server: srvCfg,
	})
	// 先预创建默认房间，便于快速试跑
	_ = rm.GetOrCreateRoom(srvCfg.RoomID)

	mux := http.NewServeMux()
	rm.RegisterRoutes(mux)
	// 前后端分离：将 / 映射到 web 目录的静态资源
	mux.Handle("/", http.FileServer(http.Dir("web")))

	srv := &http.Server{Addr: srvCfg.Addr, Handler: mux}

	go func() {
		server.Log.Infof("ShadowTaxi listening on %s; open http://localhost%v/", srvCfg.Addr, srvCfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		server.Log.Warnw("http shutdown", "err", err)
	}
	rm.StopAll()
}
