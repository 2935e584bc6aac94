package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/dtngo/dtnd/config"
	"github.com/dtngo/dtnd/engine/routing/neighbor"
	"github.com/dtngo/dtnd/model/dtn"
	"github.com/dtngo/dtnd/module/bundlefilter"
	"github.com/dtngo/dtnd/module/component"
	"github.com/dtngo/dtnd/module/metrics"
	"github.com/dtngo/dtnd/module/neighbordb"
	"github.com/dtngo/dtnd/module/util"
	"github.com/dtngo/dtnd/network/conman"
	"github.com/dtngo/dtnd/storage/memstore"
)

func main() {

	var (
		configPath  string
		localEID    string
		logLevel    string
		metricsAddr string
	)

	pflag.StringVar(&configPath, "config", "", "path to a TOML configuration file")
	pflag.StringVar(&localEID, "local-eid", "", "endpoint identifier of this node, e.g. dtn://node-one")
	pflag.StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	pflag.StringVar(&metricsAddr, "metrics-addr", "", "listen address for the prometheus endpoint")
	pflag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load configuration")
		}
	}

	// flags override the file
	if localEID != "" {
		cfg.LocalEID = localEID
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("invalid log level")
	}
	log = log.Level(level)

	collector := metrics.NewRoutingCollector()
	db := neighbordb.NewDatabase(neighbordb.Config{
		SlotCapacity:  cfg.Routing.SlotCapacity,
		SlotThreshold: cfg.Routing.SlotThreshold,
		SummaryItems:  cfg.Routing.SummaryItems,
		SummaryFPRate: cfg.Routing.SummaryFPRate,
	})
	store := memstore.New()
	connections := conman.New(log)
	transport := newLoopbackTransport(log)

	if cfg.MetricsAddr != "" {
		go func() {
			log.Info().Str("addr", cfg.MetricsAddr).Msg("serving metrics")
			server := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler()}
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// the engine is recreated after an irrecoverable error. Routing state in
	// the neighbor database survives the restart; tasks queued by the failed
	// instance do not, the next connectivity event regenerates them.
	var previous *neighbor.Engine
	factory := func() (component.Component, error) {
		if previous != nil {
			connections.Unsubscribe(previous)
		}

		eng, err := neighbor.New(
			log,
			collector,
			dtn.EID(cfg.LocalEID),
			db,
			connections,
			store,
			bundlefilter.AcceptAll(),
			transport,
			neighbor.WithSearchLimit(cfg.Routing.SearchLimit),
			neighbor.WithQueueCapacity(cfg.Routing.QueueCapacity),
		)
		if err != nil {
			return nil, err
		}
		transport.setReporter(eng)
		connections.Subscribe(eng)
		previous = eng

		go func() {
			select {
			case <-util.AllReady(eng):
				log.Info().Str("extension", eng.Tag()).Msg("routing engine ready")
			case <-eng.Done():
				// died before becoming ready
			}
		}()

		return eng, nil
	}

	onError := func(err error) component.ErrorHandlingResult {
		log.Err(err).Msg("routing engine failed, restarting")
		return component.ErrorHandlingRestart
	}

	err = component.RunComponent(ctx, factory, onError)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("routing engine terminated")
	}
	log.Info().Msg("shutdown complete")
}

// loopbackTransport is a stand-in transport used until real convergence
// layers are wired in: it accepts every transfer and reports completion
// shortly after.
type loopbackTransport struct {
	log zerolog.Logger

	mu       sync.Mutex
	reporter transferReporter
}

type transferReporter interface {
	TransferCompleted(peer dtn.EID, id dtn.BundleID)
}

func newLoopbackTransport(log zerolog.Logger) *loopbackTransport {
	return &loopbackTransport{
		log: log.With().Str("component", "loopback_transport").Logger(),
	}
}

func (t *loopbackTransport) setReporter(reporter transferReporter) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reporter = reporter
}

func (t *loopbackTransport) Transfer(nexthop dtn.EID, id dtn.BundleID, protocol dtn.Protocol) error {
	t.log.Info().
		Str("peer", nexthop.String()).
		Str("bundle", id.String()).
		Str("protocol", protocol.String()).
		Msg("transfer requested")

	go func() {
		time.Sleep(10 * time.Millisecond)
		t.mu.Lock()
		reporter := t.reporter
		t.mu.Unlock()
		if reporter != nil {
			reporter.TransferCompleted(nexthop, id)
		}
	}()
	return nil
}
