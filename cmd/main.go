package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/deepgram/ragbridge/internal/api/v1/handlers"
	"github.com/deepgram/ragbridge/internal/config"
	"github.com/deepgram/ragbridge/internal/services"
	"github.com/deepgram/ragbridge/internal/services/asset"
	"github.com/deepgram/ragbridge/pkg/logger"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// Version is stamped at build time with -ldflags "-X main.Version=...".
var Version = "dev"

const shutdownTimeout = 10 * time.Second

type CLI struct {
	Serve   ServeCommand   `cmd:"serve" default:"1" help:"Start the OpenAI-compatible proxy."`
	Ask     AskCommand     `cmd:"ask" help:"Send one question to a running proxy and stream the answer."`
	Asset   AssetCommand   `cmd:"asset" help:"Inspect or change the active asset id."`
	Version VersionCommand `cmd:"version" help:"Print the version."`
}

func main() {
	var cli CLI
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx := kong.Parse(&cli,
		kong.Name("ragbridge"),
		kong.Description("OpenAI-compatible chat completions in front of a RAG backend."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err := kctx.Run(); err != nil {
		log.Error().Err(err).Str("namespace", logger.APP).Msg("Command failed")
		os.Exit(1)
	}
}

type ServeCommand struct {
	Host     string `help:"Override HOST."`
	Port     int    `help:"Override PORT."`
	LogLevel string `help:"Override LOG_LEVEL."`
}

func (c ServeCommand) Run(ctx context.Context) error {
	cfg := config.Load()
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}

	logger.Init(cfg.Server.LogLevel, cfg.Server.LogFormat)
	logger.Info(logger.APP, "Starting ragbridge %s", Version)

	svcs, err := services.InitializeServices(cfg, prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svcs.Close()

	if cfg.Asset.Watch && cfg.Asset.File != "" {
		watcher, err := asset.NewWatcher(cfg.Asset.File, svcs.GetMetrics())
		if err != nil {
			logger.Warn(logger.ASSET, "Asset file watching disabled: %v", err)
		} else {
			go func() {
				if err := watcher.Watch(ctx, nil); err != nil {
					logger.Error(logger.ASSET, "Asset file watcher stopped: %v", err)
				}
			}()
		}
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           setupRouter(svcs, cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(logger.APP, "Server starting on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(logger.APP, "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func setupRouter(svcs *services.Services, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	handlers.RegisterV1Routes(r, svcs)

	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-ID"},
	}).Handler(r)
}

type AskCommand struct {
	Question string `arg:"" help:"The question to ask."`
	URL      string `help:"Base URL of the proxy." env:"RAGBRIDGE_URL" default:"http://localhost:8080/v1"`
	APIKey   string `help:"API key sent to the proxy." env:"RAGBRIDGE_API_KEY" default:"unused"`
	Model    string `help:"Model name to request." default:""`
}

func (c AskCommand) Run(ctx context.Context) error {
	return ask(ctx, c, os.Stdout)
}

func ask(ctx context.Context, c AskCommand, w io.Writer) error {
	clientCfg := openai.DefaultConfig(c.APIKey)
	clientCfg.BaseURL = strings.TrimRight(c.URL, "/")
	client := openai.NewClientWithConfig(clientCfg)

	stream, err := client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: c.Question},
		},
		Stream: true,
	})
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(w)
			return nil
		}
		if err != nil {
			return fmt.Errorf("stream failed: %w", err)
		}
		for _, choice := range resp.Choices {
			if choice.FinishReason == "error" {
				return fmt.Errorf("proxy reported: %s", choice.Delta.Content)
			}
			fmt.Fprint(w, choice.Delta.Content)
		}
	}
}

type AssetCommand struct {
	Show AssetShowCommand `cmd:"show" default:"1" help:"Print the asset id requests would use right now."`
	Set  AssetSetCommand  `cmd:"set" help:"Store an asset id under ASSET_ID_REDIS_KEY."`
}

type AssetShowCommand struct{}

func (c AssetShowCommand) Run(ctx context.Context) error {
	cfg := config.Load()
	logger.Init("ERROR", cfg.Server.LogFormat)

	svcs, err := services.InitializeServices(cfg, nil)
	if err != nil {
		return err
	}
	defer svcs.Close()

	ids, source, err := svcs.GetAssetResolver().Resolve(ctx, nil)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", ids, source)
	return nil
}

type AssetSetCommand struct {
	ID string `arg:"" help:"Asset id, comma separated for several."`
}

func (c AssetSetCommand) Run(ctx context.Context) error {
	cfg := config.Load()
	logger.Init("ERROR", cfg.Server.LogFormat)

	svcs, err := services.InitializeServices(cfg, nil)
	if err != nil {
		return err
	}
	defer svcs.Close()

	redisService := svcs.GetRedisService()
	if redisService == nil {
		return errors.New("redis is not configured or unreachable: set REDIS_URL")
	}
	if err := redisService.Set(ctx, cfg.Asset.RedisKey, strings.TrimSpace(c.ID), 0); err != nil {
		return fmt.Errorf("failed to store asset id: %w", err)
	}
	fmt.Printf("%s = %s\n", cfg.Asset.RedisKey, c.ID)
	return nil
}

type VersionCommand struct{}

func (c VersionCommand) Run(ctx context.Context) error {
	fmt.Println(Version)
	return nil
}
