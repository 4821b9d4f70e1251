package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apidispatch "github.com/unirides/dispatch/api/dispatch"
	"github.com/unirides/dispatch/api/drivers"
	"github.com/unirides/dispatch/api/rides"
	"github.com/unirides/dispatch/config"
	"github.com/unirides/dispatch/core/dispatch"
	"github.com/unirides/dispatch/core/dispatch/logging"
	"github.com/unirides/dispatch/core/matching"
	coremetrics "github.com/unirides/dispatch/core/metrics"
	"github.com/unirides/dispatch/core/registry"
	"github.com/unirides/dispatch/core/ride"
	"github.com/unirides/dispatch/infra/logger"
	"github.com/unirides/dispatch/infra/metrics"
	"github.com/unirides/dispatch/infra/mqtt"
	"github.com/unirides/dispatch/infra/ws"
	"github.com/unirides/dispatch/internal/eventbus"
)

// Service wires the dispatch coordinator to its transports and sinks.
type Service struct {
	Coordinator *dispatch.Coordinator
	Registry    *registry.Registry

	bus         eventbus.EventBus
	log         logger.Logger
	hub         *ws.Hub
	ingest      *mqtt.Ingest
	httpSrv     *http.Server
	sink        coremetrics.MetricsSink
	promEnabled bool
	promAddr    string
	fleetEvery  time.Duration
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	reg := registry.New(logger.New("registry"))
	store := ride.NewStore()
	bus := eventbus.New()
	hub := ws.NewHub()
	gw := ws.NewGateway(hub)
	matcher := matching.New(reg, cfg.Dispatch.SearchRadiusKm, cfg.Dispatch.MaxCandidates)

	coord, err := dispatch.NewCoordinator(cfg.Dispatch, reg, matcher, gw, store, bus, logger.New("dispatch"))
	if err != nil {
		return nil, fmt.Errorf("coordinator: %w", err)
	}
	if cfg.Logging.Backend == "jsonl" {
		logs, err := logging.NewRotatingJSONLStore(cfg.Logging.Path, cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups, cfg.Logging.MaxAgeDays)
		if err != nil {
			return nil, fmt.Errorf("dispatch log store: %w", err)
		}
		coord.SetLogStore(logs)
	}

	var ingest *mqtt.Ingest
	if cfg.MQTT.Broker != "" {
		ingest, err = mqtt.NewIngest(cfg.MQTT, reg)
		if err != nil {
			return nil, fmt.Errorf("mqtt ingest: %w", err)
		}
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket))
	}
	var sink coremetrics.MetricsSink
	switch len(sinks) {
	case 0:
	case 1:
		sink = sinks[0]
	default:
		sink = metrics.NewMultiSink(sinks...)
	}

	svc := &Service{
		Coordinator: coord,
		Registry:    reg,
		bus:         bus,
		log:         logg,
		hub:         hub,
		ingest:      ingest,
		sink:        sink,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promAddr:    cfg.Metrics.PrometheusAddr,
		fleetEvery:  time.Duration(cfg.Server.FleetReportSeconds) * time.Second,
	}
	svc.httpSrv = &http.Server{Addr: cfg.Server.Addr, Handler: svc.routes(cfg.Server.AdminToken)}
	return svc, nil
}

func (s *Service) routes(adminToken string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /ws/drivers/{id}", ws.NewDriverHandler(s.hub, s.Registry, s.Coordinator, logger.New("ws_driver")))
	mux.Handle("GET /ws/riders/{id}", ws.NewRiderHandler(s.hub, s.Coordinator, logger.New("ws_rider")))
	mux.Handle("POST /api/rides", rides.NewSubmitHandler(s.Coordinator))
	mux.Handle("POST /api/rides/{id}/cancel", rides.NewCancelHandler(s.Coordinator))
	mux.Handle("GET /api/rides/{id}", rides.NewStatusHandler(s.Coordinator))
	mux.Handle("GET /api/drivers", drivers.NewListHandler(s.Registry))
	if logs := s.Coordinator.Logs(); logs != nil {
		mux.Handle("GET /api/dispatch/logs", apidispatch.NewLogHandler(logs, adminToken))
	}
	return mux
}

// Run starts the listeners and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.sink != nil {
		metrics.StartEventCollector(ctx, s.bus, s.sink)
		metrics.StartFleetSizeReporter(ctx, s.Registry, s.sink, s.fleetEvery)
	}
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("http shutdown: %v", err)
		}
	}()
	s.log.Infof("listening on %s", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.ingest != nil {
		s.ingest.Disconnect()
	}
	s.hub.Close()
	err := s.Coordinator.Close()
	s.bus.Close()
	return err
}
