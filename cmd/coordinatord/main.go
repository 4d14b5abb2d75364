package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/knugget/coordinator/internal/handler"
	"github.com/knugget/coordinator/internal/server"
	"github.com/knugget/coordinator/pkg/apiclient"
	"github.com/knugget/coordinator/pkg/broadcast"
	"github.com/knugget/coordinator/pkg/config"
	"github.com/knugget/coordinator/pkg/httpserver"
	"github.com/knugget/coordinator/pkg/logger"
	"github.com/knugget/coordinator/pkg/mongo"
	"github.com/knugget/coordinator/pkg/origin"
	"github.com/knugget/coordinator/pkg/redis"
	"github.com/knugget/coordinator/pkg/saves"
	"github.com/knugget/coordinator/pkg/session"
)

type appConfig struct {
	Environment    string   `env:"APP_ENV" envDefault:"development"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:8000,https://knugget-new-client.vercel.app,https://knugget-new-backend.onrender.com"`
	SettingsFile   string   `env:"SETTINGS_FILE"`
}

// settingsFile is the optional YAML deployment file. Non-empty lists
// replace the corresponding environment values.
type settingsFile struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	SitePatterns   []string `yaml:"site_patterns"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("coordinator exited", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var (
		appCfg    appConfig
		httpCfg   httpserver.Config
		sessCfg   session.Config
		savesCfg  saves.Config
		bcastCfg  broadcast.Config
		apiCfg    apiclient.Config
		redisCfg  redis.Config
		mongoCfg  mongo.Config
	)
	for _, err := range []error{
		config.Load(&appCfg),
		config.Load(&httpCfg),
		config.Load(&sessCfg),
		config.Load(&savesCfg),
		config.Load(&bcastCfg),
		config.Load(&apiCfg),
		config.Load(&redisCfg),
		config.Load(&mongoCfg),
	} {
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
	}

	log := logger.New(logger.WithEnvironment(appCfg.Environment, "coordinator"))
	logger.SetAsDefault(log)

	allowedOrigins := appCfg.AllowedOrigins
	sitePatterns := bcastCfg.SitePatterns
	if appCfg.SettingsFile != "" {
		var settings settingsFile
		if err := config.LoadFile(appCfg.SettingsFile, &settings); err != nil {
			return fmt.Errorf("load settings file: %w", err)
		}
		if len(settings.AllowedOrigins) > 0 {
			allowedOrigins = settings.AllowedOrigins
		}
		if len(settings.SitePatterns) > 0 {
			sitePatterns = settings.SitePatterns
		}
	}

	gate, err := origin.NewGate(allowedOrigins)
	if err != nil {
		return fmt.Errorf("build origin gate: %w", err)
	}

	api, err := apiclient.New(apiCfg, apiclient.WithLogger(log))
	if err != nil {
		return fmt.Errorf("build api client: %w", err)
	}

	var (
		sessionStore session.Store = session.NewMemoryStore()
		saveStorage  saves.Storage = saves.NewMemoryStorage()
		checks       []func(context.Context) error
	)
	if redisCfg.Enabled() {
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() { _ = client.Close() }()

		sessionStore = session.NewRedisStore(client, session.DefaultRedisKey)
		saveStorage = saves.NewRedisStorage(client, saves.DefaultRedisKey)
		checks = append(checks, redis.Healthcheck(client))
		log.Info("using redis storage")
	}
	if mongoCfg.Enabled() {
		db, err := mongo.ConnectDatabase(ctx, mongoCfg)
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		defer func() { _ = db.Client().Disconnect(context.Background()) }()

		saveStorage = saves.NewMongoStorage(db, saves.DefaultMongoCollection)
		checks = append(checks, mongo.Healthcheck(db.Client()))
		log.Info("using mongo save storage", slog.String("database", mongoCfg.Database))
	}

	registry := broadcast.NewRegistry()
	dispatcher, err := broadcast.NewDispatcher(registry, sitePatterns, log)
	if err != nil {
		return fmt.Errorf("build dispatcher: %w", err)
	}

	// The login hook closes over the queue, which in turn authorizes
	// through the manager; the hook only fires once both exist.
	var queue *saves.Queue
	manager := session.NewFromConfig(sessCfg,
		session.WithStore(sessionStore),
		session.WithRefresher(api),
		session.WithBroadcaster(handler.NewAuthBroadcaster(dispatcher, log)),
		session.WithLogger(log),
		// Records queued while logged out are swept right after a login.
		session.WithLoginHook(func(context.Context) {
			if queue != nil {
				queue.ResyncSoon()
			}
		}),
	)

	queue, err = saves.NewQueue(saveStorage, api, manager,
		saves.WithConfig(savesCfg),
		saves.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("build save queue: %w", err)
	}

	if err := manager.Init(ctx); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	router, err := handler.NewRouter(manager, queue, api, gate, log)
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	webHandler := server.New(router, registry, log, checks...).Handler()

	log.Info("coordinator starting",
		slog.String("addr", httpCfg.Addr),
		slog.Int("allowed_origins", len(gate.Origins())),
		slog.Any("site_patterns", sitePatterns))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(queue.Run(ctx))
	g.Go(func() error { return srv.Run(ctx, webHandler) })

	return g.Wait()
}
