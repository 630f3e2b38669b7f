package cli

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/halden-bio/catalyst/internal/adapters/file"
	httpAdapter "github.com/halden-bio/catalyst/internal/adapters/http"
	"github.com/halden-bio/catalyst/internal/config"
	"github.com/halden-bio/catalyst/internal/runtime"
	"github.com/halden-bio/catalyst/pkg/adapters/genai"
	"github.com/halden-bio/catalyst/pkg/adapters/memory"
	catredis "github.com/halden-bio/catalyst/pkg/adapters/redis"
	"github.com/halden-bio/catalyst/pkg/domain"
	"github.com/halden-bio/catalyst/pkg/ports"
	"github.com/halden-bio/catalyst/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
)

// createSessionManager builds the session manager for the configured
// backend. The redis backend optionally adds distributed locking so
// multiple server instances can share one store.
func createSessionManager(cfg config.SessionConfig, logger *slog.Logger) (*session.Manager, error) {
	opts := []session.Option{session.WithLogger(logger)}

	switch cfg.Backend {
	case "memory":
		return session.NewManager(memory.NewStore(), opts...), nil

	case "file":
		return session.NewManager(file.New(cfg.Path), opts...), nil

	case "redis":
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := catredis.NewFromClient(client)
		if cfg.Redis.Lock {
			opts = append(opts, session.WithLocker(catredis.NewLocker(client, "catalyst:lock:")))
		}
		return session.NewManager(store, opts...), nil

	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

// createAnalyzer builds the analysis service client.
func createAnalyzer(cfg config.AnalysisConfig, logger *slog.Logger) ports.Analyzer {
	return genai.New(genai.Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: cfg.Timeout.Std(),
	}, genai.WithLogger(logger))
}

// ServerDeps bundles everything the serve command needs.
type ServerDeps struct {
	Addr    string
	Handler http.Handler
}

// BuildServer wires the full server stack from the configuration file.
// addrOverride, when non-empty, takes precedence over the config.
func BuildServer(configPath, addrOverride string, hooks domain.LifecycleHooks, gatherer prometheus.Gatherer) (*ServerDeps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := createLogger(false, cfg.LogLevel)

	manager, err := createSessionManager(cfg.Session, logger)
	if err != nil {
		return nil, err
	}
	analyzer := createAnalyzer(cfg.Analysis, logger)
	orch := runtime.NewOrchestrator(analyzer,
		runtime.WithLogger(logger),
		runtime.WithHooks(hooks),
	)

	addr := cfg.Server.Addr
	if addrOverride != "" {
		addr = addrOverride
	}

	return &ServerDeps{
		Addr: addr,
		Handler: httpAdapter.NewHandler(manager, orch, analyzer, gatherer,
			httpAdapter.WithLogger(logger)),
	}, nil
}
