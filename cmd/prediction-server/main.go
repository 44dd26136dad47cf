// cmd/prediction-server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/camunda"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/config"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/database"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/logger"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/observability"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/inference"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/prediction"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/server"

	pcy "github.com/Tesis-SiembraSmart/api-modelos/internal/workers/prediction/predict-crop-yield"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Options{Level: "info", Format: "console"})
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cfg.Logging.Output,
		Service: cfg.App.Name,
	})
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)
	log.Info("starting prediction server", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"backend":     cfg.Inference.Backend,
	})

	ctx := context.Background()

	spanExporter, err := observability.NewSpanExporter(ctx, cfg.Tracing)
	if err != nil {
		log.Warn("trace exporter unavailable, spans are dropped", map[string]interface{}{"error": err.Error()})
	}
	obs := observability.New(cfg.App.Name, nil, log, observability.WithSpanExporter(spanExporter))
	defer obs.Shutdown()

	// --- Profiles and engines ---
	profiles, err := prediction.NewRegistryFromShapes(prediction.ShapesFromConfig(cfg.EnabledModels()))
	if err != nil {
		zapLog.Fatal("crop profiles invalid", zap.Error(err))
	}

	engines, err := inference.Load(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("inference backend failed", zap.Error(err))
	}
	defer func() {
		if err := engines.Close(); err != nil {
			log.Error("error releasing engines", map[string]interface{}{"error": err.Error()})
		}
	}()

	dispatcher := prediction.NewDispatcher(profiles, engines, log, prediction.WithTracer(obs.Tracer()))
	log.Info("crops ready", map[string]interface{}{"crops": dispatcher.Supported()})

	var predictor prediction.Predictor = dispatcher

	// --- Optional Redis cache ---
	if cfg.Cache.Enabled {
		rdb, err := database.NewRedis(ctx, cfg.Cache.Redis, config.GetDuration(cfg.Server.ReadTimeout))
		if err != nil {
			log.Warn("redis unavailable, serving without cache", map[string]interface{}{"error": err.Error()})
		} else {
			defer rdb.Close()
			predictor = prediction.NewCachedPredictor(dispatcher, rdb.Client, config.GetDuration(cfg.Cache.TTL), log)
			log.Info("prediction cache enabled", map[string]interface{}{"address": cfg.Cache.Redis.Address})
		}
	}

	// --- Optional Zeebe job worker ---
	var jobs *jobWorker
	if cfg.Camunda.Enabled {
		jobs = startJobWorker(ctx, camunda.ConfigFrom(cfg.Camunda), pcy.LoadConfig(cfg.Camunda), predictor, log)
	}

	// --- HTTP ---
	srv := server.New(server.Options{
		Predictor:     predictor,
		Crops:         dispatcher,
		Observability: obs,
		Logger:        log,
		Mode:          cfg.Server.Mode,
		Version:       cfg.App.Version,
	})
	httpServer := server.NewHTTPServer(cfg.Server, srv.Handler())

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", map[string]interface{}{"signal": sig.String()})
	case err := <-errCh:
		log.Error("http server failed", map[string]interface{}{"error": err.Error()})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("error shutting down http server", map[string]interface{}{"error": err.Error()})
	}
	jobs.Stop(log)

	log.Info("prediction server stopped", nil)
}

type jobWorker struct {
	client *camunda.Client
	worker *camunda.CamundaWorker
}

// startJobWorker connects to the broker and starts the prediction job worker.
// An unreachable broker is logged and nil is returned; the HTTP API keeps
// serving without it.
func startJobWorker(ctx context.Context, clientCfg *camunda.ClientConfig, wcfg *pcy.Config, predictor prediction.Predictor, log logger.Logger) *jobWorker {
	zeebe, err := camunda.NewClientWithConfig(ctx, clientCfg, log)
	if err != nil {
		log.Warn("zeebe unavailable, serving without job worker", map[string]interface{}{
			"address": clientCfg.GatewayAddress,
			"error":   err.Error(),
		})
		return nil
	}

	w := camunda.NewWorker(zeebe.GetClient(), camunda.WorkerOptions{
		TaskType:      pcy.TaskType,
		MaxJobsActive: wcfg.MaxJobsActive,
		Timeout:       wcfg.Timeout,
	}, pcy.NewHandler(wcfg, predictor, log), log)
	return &jobWorker{client: zeebe, worker: w}
}

// Stop closes the worker and then its client. Safe on a nil receiver.
func (j *jobWorker) Stop(log logger.Logger) {
	if j == nil {
		return
	}
	j.worker.Stop()
	if err := j.client.Close(); err != nil {
		log.Warn("error closing zeebe client", map[string]interface{}{"error": err.Error()})
	}
}
