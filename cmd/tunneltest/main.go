// tunneltest opens a websocket tunnel to one gateway connection and streams
// frames to the console.
// Usage: go run ./cmd/tunneltest --gateway wss://gateway.example.com --id 42
//
// Authentication comes from flags or environment variables:
//
//	GATEWAY_TOKEN    - pre-issued auth token
//	GATEWAY_USERNAME - username, used with GATEWAY_PASSWORD when no token is set
//	GATEWAY_PASSWORD - password
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mwhittaker/remotegate/internal/auth"
	"github.com/mwhittaker/remotegate/internal/tunnel"
)

func main() {
	wsURL := flag.String("gateway", os.Getenv("GATEWAY_WS_URL"), "gateway websocket base URL")
	baseURL := flag.String("api", os.Getenv("GATEWAY_URL"), "gateway REST base URL (for credential login)")
	connID := flag.String("id", "", "connection identifier to tunnel")
	token := flag.String("token", os.Getenv("GATEWAY_TOKEN"), "pre-issued auth token")
	verbose := flag.Bool("verbose", false, "print full frame contents")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	if *wsURL == "" || *connID == "" {
		logger.Error("both --gateway and --id are required")
		os.Exit(1)
	}

	tokens, err := buildTokenSource(*token, *baseURL)
	if err != nil {
		logger.Error("failed to build token source", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	cfg := tunnel.DefaultClientConfig()
	cfg.URL = *wsURL
	cfg.ConnectionID = *connID
	cfg.Tokens = tokens

	client := tunnel.NewClient(cfg, logger)

	logger.Info("connecting tunnel", "connection", *connID)
	if err := client.Connect(ctx); err != nil {
		logger.Error("failed to connect", "error", err)
		os.Exit(1)
	}

	// Stats printer
	var frames, bytes int64
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logger.Info("stats",
					"connected", client.IsConnected(),
					"frames", frames,
					"bytes", bytes,
				)
			}
		}
	}()

	logger.Info("streaming started - press Ctrl+C to stop")

	for {
		select {
		case <-ctx.Done():
			client.Close()
			logger.Info("shutdown complete")
			return
		case err := <-client.Errors():
			logger.Error("tunnel error", "error", err)
			client.Close()
			os.Exit(1)
		case frame := <-client.Frames():
			frames++
			bytes += int64(len(frame.Data))
			if *verbose {
				fmt.Printf("[FRAME] %s %s\n", frame.ReceivedAt.Format(time.RFC3339Nano), frame.Data)
			} else {
				fmt.Printf("[FRAME] len=%d at=%s\n", len(frame.Data), frame.ReceivedAt.Format(time.RFC3339Nano))
			}
		}
	}
}

// buildTokenSource picks a token source: a pre-issued token wins, otherwise
// log in with credentials from the environment.
func buildTokenSource(token, baseURL string) (auth.TokenSource, error) {
	if token != "" {
		return auth.StaticTokenSource(token), nil
	}

	username := os.Getenv("GATEWAY_USERNAME")
	password := os.Getenv("GATEWAY_PASSWORD")
	if username == "" || password == "" {
		return nil, fmt.Errorf("no token and no credentials: set GATEWAY_TOKEN or GATEWAY_USERNAME/GATEWAY_PASSWORD")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("--api (or GATEWAY_URL) is required for credential login")
	}

	return auth.NewSessionTokenSource(baseURL, username, password), nil
}
