package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kroy92/copilot-automation-testing/internal/config"
	"github.com/kroy92/copilot-automation-testing/internal/handler"
	"github.com/kroy92/copilot-automation-testing/internal/handler/mockbot"
	"github.com/kroy92/copilot-automation-testing/internal/service/conversation"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	conversations := conversation.NewService()
	router := handler.NewRouter(conversations, mockbot.ScriptedResponder{}, cfg.Server)

	if cfg.Server.ChunkSize > 0 {
		log.Printf("stream frames split into %d byte chunks", cfg.Server.ChunkSize)
	}

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	ln, err := net.Listen("tcp", serverCfg.Addr)
	if err != nil {
		log.Fatalf("listen on %s: %v", serverCfg.Addr, err)
	}

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	// 被劫持的 WebSocket 连接不受 Shutdown 管理，由请求上下文结束。
	srv.BaseContext = func(net.Listener) context.Context { return ctx }

	log.Printf("mock Direct Line bot listening on %s", ln.Addr())
	if err := serve(ctx, ln, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// serve 在 ln 上提供服务，ctx 取消后在 shutdownTimeout 内优雅退出。
func serve(ctx context.Context, ln net.Listener, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("shutting down mock bot")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
