package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/application/usecase"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/events"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/inventario-stock/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/inventario-stock/internal/interfaces/http"
	"github.com/jhoicas/inventario-stock/pkg/config"
	"github.com/jhoicas/inventario-stock/pkg/logger"
)

// repositories puertos de persistencia según INVENTORY_STORAGE.
type repositories struct {
	items      repository.ItemRepository
	balances   repository.BalanceRepository
	ledger     repository.LedgerRepository
	categories repository.CategoryRepository
	actors     repository.ActorRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Inventory.Storage).
		Str("lock", cfg.Inventory.LockBackend).
		Msg("iniciando aplicación")

	ctx := context.Background()
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	seeds, err := entity.ParseSeedActors(cfg.Inventory.SeedActors)
	if err != nil {
		log.Fatal().Err(err).Msg("INVENTORY_SEED_ACTORS")
	}

	var repos repositories
	switch cfg.Inventory.Storage {
	case config.StorageMemory:
		store := memory.NewStore()
		store.SeedActors(seeds)
		repos = repositories{
			items:      memory.NewItemRepository(store),
			balances:   memory.NewBalanceRepository(store),
			ledger:     memory.NewLedgerRepository(store),
			categories: memory.NewCategoryRepository(store),
			actors:     memory.NewActorRepository(store),
		}
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		closers = append(closers, pool.Close)
		if err := postgres.NewTxRunner(pool).Bootstrap(ctx, cfg.DB.Migrate, seeds); err != nil {
			log.Fatal().Err(err).Msg("preparar base de datos")
		}
		repos = repositories{
			items:      postgres.NewItemRepository(pool),
			balances:   postgres.NewBalanceRepository(pool),
			ledger:     postgres.NewLedgerRepository(pool),
			categories: postgres.NewCategoryRepository(pool),
			actors:     postgres.NewActorRepository(pool),
		}
	}

	var locker inventory.ItemLocker
	switch cfg.Inventory.LockBackend {
	case config.LockRedis:
		rc, err := infraredis.New(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		closers = append(closers, func() { _ = rc.Close() })
		locker = infraredis.NewLocker(rc.Client, cfg.Inventory.LockTTL, cfg.Inventory.LockWait, log.Component("redis_locker"))
	case config.LockNone:
		locker = inventory.NoopLocker{}
	default:
		locker = inventory.NewLocalLocker()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var publisher inventory.MovementPublisher
	if cfg.Events.NATSURL != "" {
		nc, err := events.Connect(cfg.Events.NATSURL, cfg.App.Name, log.Component("nats"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a NATS")
		}
		closers = append(closers, func() { _ = nc.Drain() })
		publisher = events.NewNATSPublisher(nc, cfg.Events.SubjectPrefix)
	}

	gate := inventory.NewGate(repos.actors, cfg.Inventory.MovementRoles, cfg.Inventory.PrivilegedRoles)
	engine := inventory.NewEngine(inventory.EngineDeps{
		Items:       repos.items,
		Balances:    repos.balances,
		Ledger:      repos.ledger,
		Gate:        gate,
		Locker:      locker,
		Observer:    m,
		Publisher:   publisher,
		Logger:      log.Zerolog(),
		MaxAttempts: cfg.Inventory.MaxCASRetries,
	})
	provisioner := inventory.NewProvisioner(repos.items, repos.balances, repos.categories, m, log.Zerolog())
	resolver := inventory.NewResolver(repos.items, repos.categories, provisioner, log.Zerolog())
	dispatcher := inventory.NewDispatcher(gate, resolver, engine)
	history := inventory.NewHistoryService(repos.ledger, gate, cfg.Inventory.HistoryDefaultLimit, cfg.Inventory.HistoryMaxLimit)

	itemUC := usecase.NewItemUseCase(repos.items, repos.balances, repos.ledger, repos.categories, provisioner, gate, log.Zerolog())
	categoryUC := usecase.NewCategoryUseCase(repos.categories, gate)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.AccessLog(log.Component("http"), m))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario Stock API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Inventory.Storage})
	})
	if cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Dispatcher: dispatcher,
		History:    history,
		ItemUC:     itemUC,
		CategoryUC: categoryUC,
		JWTSecret:  cfg.JWT.Secret,
		AdminRoles: cfg.Inventory.PrivilegedRoles,
		Logger:     log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
