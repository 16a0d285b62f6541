package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/application/orders"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/internal/infrastructure/memory"
	"github.com/jhoicas/stock-engine/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-engine/internal/infrastructure/notify"
	"github.com/jhoicas/stock-engine/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-engine/internal/interfaces/http"
	"github.com/jhoicas/stock-engine/pkg/config"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// store lo implementan postgres.Store y memory.Store.
type store interface {
	repository.TxRunner
	Repositories() repository.Repositories
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
		Str("store", cfg.App.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var st store
	switch cfg.App.Store {
	case "memory":
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		st = memory.New()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.EnsureSchema(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("aplicar esquema")
			}
		}
		st = postgres.NewStore(pool, cfg.Engine.LedgerPageSize)
	}

	// Notificaciones: siempre al log; además a Redis pub/sub si está configurado.
	sinks := notify.MultiSink{notify.NewLogSink(log)}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// Las alertas son de mejor esfuerzo: se arranca igual y cada envío fallido queda en el log.
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible")
		}
		sinks = append(sinks, notify.NewRedisSink(rdb, cfg.Redis.Channel))
	}
	dispatcher := notify.NewDispatcher(sinks, cfg.Alerts.Timeout(), log)

	recorder := metrics.New()
	monitor := inventory.NewThresholdMonitor(inventory.NewAlertRouting(cfg.Alerts.Routes))

	stockUC := inventory.NewStockUseCase(st, monitor, dispatcher, recorder, log)
	stockQueryUC := inventory.NewStockQueryUseCase(st.Repositories(), recorder, log)
	orderUC := orders.NewOrderUseCase(st, st.Repositories(), monitor, dispatcher, recorder, log, orders.Options{
		NumberRetries: cfg.Engine.OrderNumberRetries,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Stock Engine API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		StockUC:      stockUC,
		StockQueryUC: stockQueryUC,
		OrderUC:      orderUC,
		Metrics:      recorder,
		JWTSecret:    cfg.JWT.Secret,
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
	dispatcher.Wait()

	log.Info().Msg("aplicación detenida")
}
