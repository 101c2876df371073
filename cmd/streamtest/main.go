// streamtest connects to a running screener's websocket stream and prints
// decoded frames to the console.
// Usage: go run ./cmd/streamtest --url ws://localhost:8080/ws
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/tokenscope/internal/stream"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "screener websocket URL")
	verbose := flag.Bool("verbose", false, "print full frame JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	cfg := stream.DefaultClientConfig()
	cfg.URL = *url
	client := stream.NewClient(cfg, logger)

	if err := client.Connect(ctx); err != nil {
		logger.Error("failed to connect", "url", *url, "error", err)
		os.Exit(1)
	}
	defer client.Close()

	logger.Info("streaming started - press Ctrl+C to stop", "url", *url)

	var frames, updates int64
	var lastSeq int64
	stats := time.NewTicker(10 * time.Second)
	defer stats.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutdown complete", "frames", frames, "updates", updates)
			return

		case err := <-client.Errors():
			logger.Error("stream failed", "error", err)
			os.Exit(1)

		case <-stats.C:
			logger.Info("stats", "frames", frames, "updates", updates, "last_seq", lastSeq)

		case f := <-client.Frames():
			frames++
			if lastSeq != 0 && f.Seq != lastSeq+1 {
				logger.Warn("sequence gap", "expected", lastSeq+1, "got", f.Seq)
			}
			lastSeq = f.Seq

			if *verbose {
				data, _ := json.MarshalIndent(f, "", "  ")
				fmt.Printf("[%s] %s\n", f.Type, data)
				continue
			}

			switch f.Type {
			case stream.TypeSnapshot:
				fmt.Printf("[SNAPSHOT] seq=%d tokens=%d\n", f.Seq, len(f.Snapshot.Tokens))
			case stream.TypePriceUpdate:
				updates++
				fmt.Printf("[PRICE] seq=%d %s %.8g latency=%s\n",
					f.Seq,
					f.Update.EntityID,
					f.Update.Price,
					f.ReceivedAt.Sub(time.UnixMilli(f.Update.Timestamp)).Round(time.Millisecond),
				)
			}
		}
	}
}
