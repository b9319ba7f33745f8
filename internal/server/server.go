package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 10 * time.Second

// Start は ctx が終わるまでサーバを動かし、終わったら graceful shutdown する。
// onShutdown は Shutdown 開始時に呼ばれる。SSE のような長い接続を閉じるのに使う。
func Start(ctx context.Context, addr string, h http.Handler, logger *slog.Logger, onShutdown ...func()) error {
	srv := &http.Server{
		Addr:        addr,
		Handler:     h,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
		// WriteTimeout は付けない（SSEが切れる）
	}
	for _, f := range onShutdown {
		srv.RegisterOnShutdown(f)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	return <-errCh
}
