package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-request-kit/internal/config"
	"github.com/samvad-hq/samvad-request-kit/internal/domain"
	"github.com/samvad-hq/samvad-request-kit/internal/logger"
	"github.com/samvad-hq/samvad-request-kit/internal/storage"
	"github.com/samvad-hq/samvad-request-kit/pkg/httpclient"
	"github.com/samvad-hq/samvad-request-kit/pkg/publishers"
	"github.com/samvad-hq/samvad-request-kit/pkg/requesthandler"
)

const publishTimeout = 10 * time.Second

// Runtime wires the request handler to the exchange history and the audit publishers.
type Runtime struct {
	cfg     *config.Config
	handler *requesthandler.Handler
	store   storage.Store
	fanout  *publishers.Fanout
	log     *logger.Logger
}

// NewRuntime builds a runtime from cfg. Publishers are optional; history defaults to disabled.
func NewRuntime(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.Nop()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var fanout *publishers.Fanout
	if strings.TrimSpace(cfg.PublishersFile) != "" {
		publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
		if err != nil {
			return nil, fmt.Errorf("load publishers registry: %w", err)
		}
		enabledPublishers := publisherReg.Enabled()
		pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
		if err != nil {
			return nil, fmt.Errorf("build publishers: %w", err)
		}
		fanout = publishers.NewFanout(pubClients)

		publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
		for _, pubCfg := range enabledPublishers {
			publisherSummaries = append(publisherSummaries, map[string]string{
				"id":   pubCfg.ID,
				"type": pubCfg.Type,
			})
		}
		log.DebugObj("publishers registry loaded", "publishers_meta", map[string]any{
			"count":      len(publisherSummaries),
			"publishers": publisherSummaries,
		})
	}

	storeOpts := storage.Options{
		TTL:             cfg.HistoryTTL,
		CleanupInterval: cfg.HistoryCleanupInterval,
	}
	store, err := storage.NewStore(cfg.HistoryType, cfg.HistoryPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init history: %w", err)
	}
	log.DebugObj("history initialized", "history_config", map[string]any{
		"type":                     cfg.HistoryType,
		"path":                     cfg.HistoryPath,
		"ttl_seconds":              int(cfg.HistoryTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.HistoryCleanupInterval.Seconds()),
	})

	rt := &Runtime{
		cfg:    cfg,
		store:  store,
		fanout: fanout,
		log:    log,
	}

	handler, err := requesthandler.New(cfg.BaseURL,
		requesthandler.WithToken(cfg.AuthToken),
		requesthandler.WithLogging(cfg.LogEnabled),
		requesthandler.WithLogger(log),
		requesthandler.WithClient(httpclient.NewRestyClient(cfg.Timeout)),
		requesthandler.WithAdditionalHeaders(cfg.AdditionalHeaders),
		requesthandler.WithNullBodyOnPost(cfg.NullBodyOnPost),
		requesthandler.WithObserver(&exchangeRecorder{
			source: cfg.AppName,
			store:  store,
			fanout: fanout,
			log:    log,
		}),
	)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("build request handler: %w", err)
	}
	rt.handler = handler
	return rt, nil
}

// Handler exposes the configured request handler.
func (r *Runtime) Handler() *requesthandler.Handler {
	if r == nil {
		return nil
	}
	return r.handler
}

// History returns up to limit recent exchanges, newest first.
func (r *Runtime) History(limit int) ([]domain.Exchange, error) {
	if r == nil || r.store == nil {
		return nil, nil
	}
	return r.store.Recent(limit)
}

// Close releases the history store and publisher clients, logging failures.
func (r *Runtime) Close() {
	if r == nil {
		return
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.log.ErrorObj("history close failed", "error", err)
		}
	}
	if err := r.fanout.Close(); err != nil {
		r.log.ErrorObj("publishers close failed", "error", err)
	}
}

// exchangeRecorder stores and publishes every exchange. Failures are logged, never returned to
// the caller of the handler.
type exchangeRecorder struct {
	source string
	store  storage.Store
	fanout *publishers.Fanout
	log    *logger.Logger
}

func (e *exchangeRecorder) ObserveExchange(ctx context.Context, ex domain.Exchange) {
	if e.store != nil {
		if err := e.store.Record(ex); err != nil {
			e.log.WarnObj("history record failed", "history_error", map[string]any{
				"exchange_id": ex.ID,
				"error":       err.Error(),
			})
		}
	}
	if e.fanout.Size() == 0 {
		return
	}
	// Cancelled exchanges are still audited; the fan-out only gets its own deadline.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	delivered, err := e.fanout.Publish(pubCtx, publishers.NewEvent(e.source, ex))
	if err != nil {
		e.log.WarnObj("exchange publish failed", "publish_error", map[string]any{
			"exchange_id": ex.ID,
			"delivered":   delivered,
			"error":       err.Error(),
		})
	}
}
