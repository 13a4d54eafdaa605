// Package server orchestrates all components: NATS, sender validation, IPC registry, notifications, HTTP health.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	commsserver "github.com/nats-io/nats-server/v2/server"
	comms "github.com/nats-io/nats.go"

	"github.com/morezero/ipc-bridge/internal/config"
	"github.com/morezero/ipc-bridge/internal/hostapp"
	"github.com/morezero/ipc-bridge/pkg/channel"
	"github.com/morezero/ipc-bridge/pkg/commsutil"
	"github.com/morezero/ipc-bridge/pkg/ipcmain"
	"github.com/morezero/ipc-bridge/pkg/notify"
	"github.com/morezero/ipc-bridge/pkg/origin"
	"github.com/morezero/ipc-bridge/pkg/transport/natstransport"
)

const logPrefix = "server:server"

// Version is reported by GET_APP_INFOS. Overridden at build time with -ldflags.
var Version = "dev"

// connStatus is the part of *comms.Conn the health check needs.
type connStatus interface {
	IsConnected() bool
}

// servedRegistry is the part of *ipcmain.Registry the HTTP handlers and
// shutdown need.
type servedRegistry interface {
	Channels() []string
	Close() error
}

// Server is the ipc-host orchestrator.
type Server struct {
	cfg        *config.Config
	ns         *commsserver.Server
	nc         *comms.Conn
	conn       connStatus
	reg        servedRegistry
	httpServer *http.Server
}

// HealthOutput is the body of GET /health.
type HealthOutput struct {
	Status    string       `json:"status"`
	Checks    HealthChecks `json:"checks"`
	Timestamp string       `json:"timestamp"`
}

// HealthChecks lists the individual health checks.
type HealthChecks struct {
	Comms bool `json:"comms"`
}

// ChannelsOutput is the body of GET /channels.
type ChannelsOutput struct {
	Contract *channel.Contract `json:"contract"`
	Served   []string          `json:"served"`
	Policy   string            `json:"policy"`
	DevMode  bool              `json:"devMode"`
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: logLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Run starts the host, blocks until shutdown signal, then cleans up.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	slog.Info(fmt.Sprintf("%s - Starting ipc-host", logPrefix))

	s := &Server{cfg: cfg}
	if err := s.start(logger); err != nil {
		s.shutdown(context.Background())
		return err
	}

	slog.Info(fmt.Sprintf("%s - ipc-host is ready", logPrefix))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info(fmt.Sprintf("%s - Received signal %s, shutting down", logPrefix, sig))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HealthCheckTimeout)
	defer cancel()
	s.shutdown(ctx)

	slog.Info(fmt.Sprintf("%s - Shutdown complete", logPrefix))
	return nil
}

func (s *Server) start(logger *slog.Logger) error {
	cfg := s.cfg

	// Step 1: NATS, embedded or standalone
	commsURL := cfg.COMMSURL
	if cfg.Embedded {
		ns, err := commsutil.StartEmbedded(cfg.EmbeddedHost, cfg.EmbeddedPort)
		if err != nil {
			return fmt.Errorf("%s - failed to start embedded NATS: %w", logPrefix, err)
		}
		s.ns = ns
		commsURL = ns.ClientURL()
	}
	nc, err := commsutil.Connect(commsURL, cfg.COMMSName)
	if err != nil {
		return fmt.Errorf("%s - failed to connect to NATS: %w", logPrefix, err)
	}
	s.nc = nc
	s.conn = nc
	slog.Info(fmt.Sprintf("%s - Connected to NATS at %s", logPrefix, commsURL))

	// Step 2: sender validation
	validator, err := origin.NewValidator(origin.Config{DevServerURL: cfg.DevServerURL, AppScheme: cfg.AppScheme})
	if err != nil {
		return fmt.Errorf("%s - invalid sender validation config: %w", logPrefix, err)
	}
	if validator.DevMode() {
		slog.Warn(fmt.Sprintf("%s - Development mode: trusting senders from %s", logPrefix, cfg.DevServerURL))
	}

	// Step 3: registry and notifications over one transport
	policy, err := cfg.Policy()
	if err != nil {
		return fmt.Errorf("%s - %w", logPrefix, err)
	}
	tr := natstransport.New(nc, &natstransport.Opts{SubjectPrefix: cfg.SubjectPrefix})
	reg, err := ipcmain.NewRegistry(ipcmain.Params{
		Transport: tr,
		Validator: validator,
		Logger:    logger,
		Policy:    policy,
	})
	if err != nil {
		return fmt.Errorf("%s - failed to create registry: %w", logPrefix, err)
	}
	s.reg = reg

	disp := notify.NewDispatcher(tr, &notify.DispatcherOpts{Logger: logger})
	app := hostapp.New(hostapp.Params{
		Name:       cfg.COMMSName,
		Version:    Version,
		Settings:   hostapp.NewSettings(hostapp.LoadSettingsFile(cfg.SettingsFile)),
		Dispatcher: disp,
		Logger:     logger,
	})
	if err := reg.Register(app.Registrations()...); err != nil {
		return fmt.Errorf("%s - failed to register handlers: %w", logPrefix, err)
	}
	slog.Info(fmt.Sprintf("%s - Serving %v under %s (policy %s)", logPrefix, reg.Channels(), cfg.SubjectPrefix, policy))

	if _, err := tr.ServeContract(channel.Describe()); err != nil {
		return fmt.Errorf("%s - failed to serve contract: %w", logPrefix, err)
	}

	// Step 4: HTTP health server
	if cfg.HTTPPort == 0 {
		return nil
	}
	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	s.httpServer = &http.Server{Addr: httpAddr, Handler: s.mux()}
	go func() {
		slog.Info(fmt.Sprintf("%s - HTTP health server listening on %s", logPrefix, httpAddr))
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error(fmt.Sprintf("%s - HTTP server error: %v", logPrefix, err))
		}
	}()
	return nil
}

// shutdown releases whatever start managed to acquire.
func (s *Server) shutdown(ctx context.Context) {
	if s.httpServer != nil {
		s.httpServer.Shutdown(ctx)
	}
	if s.reg != nil {
		if err := s.reg.Close(); err != nil {
			slog.Warn(fmt.Sprintf("%s - registry close: %v", logPrefix, err))
		}
	}
	if s.nc != nil {
		s.nc.Drain()
	}
	if s.ns != nil {
		commsutil.StopEmbedded(s.ns)
	}
}

func (s *Server) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth())
	mux.HandleFunc("/ready", s.handleReady())
	mux.HandleFunc("/channels", s.handleChannels())
	return mux
}

func (s *Server) health() *HealthOutput {
	h := &HealthOutput{
		Status:    "healthy",
		Checks:    HealthChecks{Comms: s.conn != nil && s.conn.IsConnected()},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if !h.Checks.Comms {
		h.Status = "unhealthy"
	}
	return h
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := s.health()
		w.Header().Set("Content-Type", "application/json")
		if h.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(h)
	}
}

func (s *Server) handleReady() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if s.reg == nil || len(s.reg.Channels()) == 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "starting"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	}
}

func (s *Server) handleChannels() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := ChannelsOutput{
			Contract: channel.Describe(),
			Served:   []string{},
			Policy:   s.cfg.FailurePolicy,
			DevMode:  s.cfg.DevServerURL != "",
		}
		if s.reg != nil {
			out.Served = s.reg.Channels()
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(out); err != nil {
			slog.Error(fmt.Sprintf("%s - channels encode: %v", logPrefix, err))
		}
	}
}
