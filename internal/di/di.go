package di

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/IoTMirror/GoogleWebService/internal/config"
	statedomain "github.com/IoTMirror/GoogleWebService/internal/domain/state"
	tokendomain "github.com/IoTMirror/GoogleWebService/internal/domain/token"
	"github.com/IoTMirror/GoogleWebService/internal/handler"
	"github.com/IoTMirror/GoogleWebService/internal/infrastructure/db"
	"github.com/IoTMirror/GoogleWebService/internal/infrastructure/google"
	staterepo "github.com/IoTMirror/GoogleWebService/internal/infrastructure/repository/state"
	tokenrepo "github.com/IoTMirror/GoogleWebService/internal/infrastructure/repository/token"
	"github.com/IoTMirror/GoogleWebService/internal/metrics"
	"github.com/IoTMirror/GoogleWebService/internal/service/account"
	"github.com/IoTMirror/GoogleWebService/internal/service/auth"
)

type Container struct {
	DB       *sql.DB
	Redis    *redis.Client
	Registry *prometheus.Registry
	Metrics  *metrics.Collector

	Authority *google.Authority
	TokenRepo tokendomain.Repo
	StateRepo statedomain.Repo

	AuthService    *auth.Service
	AccountService *account.Service
}

// NewContainer opens the stores and builds the services. The schema is expected to
// be migrated already.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	conn, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	slog.Info("database connected", "driver", cfg.DBDriver)

	c := &Container{DB: conn}

	switch cfg.StateStore {
	case config.StateStoreRedis:
		c.Redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		slog.Info("redis connected", "addr", cfg.RedisAddr)
		c.StateRepo = staterepo.NewRedisStateRepo(c.Redis, cfg.StateTTL)
	default:
		c.StateRepo = staterepo.NewStateRepo(conn, cfg.StateTTL)
	}
	c.TokenRepo = tokenrepo.NewTokenRepo(conn)

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.NewCollector(c.Registry)

	c.Authority = google.NewAuthority(google.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleCallbackURL,
		Scopes:       cfg.GoogleScopes,
		RevokeURL:    cfg.GoogleRevokeURL,
		Limiter:      rate.NewLimiter(rate.Limit(cfg.GoogleAPIQPS), cfg.GoogleAPIBurst),
	})

	c.AuthService = auth.NewService(c.Authority, c.StateRepo, c.TokenRepo, c.Metrics)
	c.AccountService = account.NewService(c.TokenRepo, c.Authority, nil, account.Limits{
		TaskQuota: cfg.TaskQuota,
		EventsMax: cfg.EventsMax,
		InboxMax:  cfg.InboxMax,
	}, c.Metrics)

	return c, nil
}

func (c *Container) Router() http.Handler {
	return handler.NewRouter(handler.RouterDeps{
		Flow:    c.AuthService,
		Account: c.AccountService,
		Metrics: metrics.Handler(c.Registry),
	})
}

func (c *Container) Close() error {
	var firstErr error
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			firstErr = err
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
