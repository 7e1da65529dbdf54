package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slack-go/slack"

	"github.com/mentionharness/harness/internal/chatplatform"
	"github.com/mentionharness/harness/internal/config"
	"github.com/mentionharness/harness/internal/harness"
	"github.com/mentionharness/harness/internal/httpapi"
	"github.com/mentionharness/harness/internal/ingress"
	"github.com/mentionharness/harness/internal/mentionbot"
	"github.com/mentionharness/harness/internal/observability"
	"github.com/mentionharness/harness/internal/observability/jsonlog"
	"github.com/mentionharness/harness/internal/store/postgres"
	"github.com/mentionharness/harness/internal/worker"

	chatslack "github.com/mentionharness/harness/internal/chatplatform/slack"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracingFromEnv("mentionharness")
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	store, err := postgres.Open(rootCtx, cfg.DBDSN)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	logger := jsonlog.New(os.Stdout)

	chat := chatslack.New(cfg.SlackBotToken, slack.OptionAppLevelToken(cfg.SlackAppToken))
	proc := mentionbot.New(canned{}, cfg.MaxAttempts, logger)

	h := harness.New(store, chat, proc, harness.Config{
		Workers: cfg.Workers,
		Worker: worker.Config{
			PollInterval: cfg.BaseSleep(),
			JitterMin:    cfg.MinJitter(),
			JitterMax:    cfg.MaxJitter(),
			MaxAttempts:  cfg.MaxAttempts,
			Lease:        cfg.Lease(),
			BatchCap:     cfg.BatchCap,
		},
		SweepEvery:  cfg.SweepEvery(),
		MaxEventAge: cfg.MaxAge(),
	}, logger)

	listener := ingress.NewSlackListener(chat.API(), h.Ingress(), logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", httpapi.HealthzHandler())
	mux.HandleFunc("/readyz", httpapi.ReadyzHandler(store.DB()))
	mux.HandleFunc("/v1/metrics", httpapi.MetricsHandler(observability.Default))
	mux.HandleFunc("/v1/metrics/prometheus", httpapi.MetricsPrometheusHandler(observability.Default))
	mux.HandleFunc("/v1/debug/sweep", httpapi.DebugSweepHandler(store, cfg.MaxAttempts, cfg.MaxAge()))
	mux.HandleFunc("/v1/debug/history", httpapi.DebugHistoryHandler(store))

	handler := httpapi.WithRequestIDJSON(logger)(
		httpapi.LoggingJSON(logger)(mux),
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 2)
	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
	go func() {
		if err := h.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
			errs <- err
		}
	}()
	go func() {
		if err := listener.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
			errs <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Printf("shutdown signal received")
	case err := <-errs:
		log.Printf("fatal component error: %v", err)
		stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}

	log.Printf("bye")
}

// canned is the default responder wired at startup; embedding
// applications replace it with a real mentionbot.Responder (an LLM
// agent, a rules engine, etc).
type canned struct{}

func (canned) Respond(ctx context.Context, m chatplatform.Mention) (string, error) {
	return "thanks for the mention, I'm still learning how to respond.", nil
}
