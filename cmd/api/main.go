package main

import (
	"context"
	"io"
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

	"github.com/jhoicas/inventario-cacc/internal/application/auth"
	"github.com/jhoicas/inventario-cacc/internal/application/cart"
	"github.com/jhoicas/inventario-cacc/internal/application/catalog"
	"github.com/jhoicas/inventario-cacc/internal/application/inventory"
	"github.com/jhoicas/inventario-cacc/internal/application/order"
	"github.com/jhoicas/inventario-cacc/internal/infrastructure/events"
	"github.com/jhoicas/inventario-cacc/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-cacc/internal/infrastructure/metrics"
	infraredis "github.com/jhoicas/inventario-cacc/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/inventario-cacc/internal/interfaces/http"
	"github.com/jhoicas/inventario-cacc/pkg/config"
	"github.com/jhoicas/inventario-cacc/pkg/logger"
	"github.com/jhoicas/inventario-cacc/pkg/tracing"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, cfg.App.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar tracing")
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.close()

	// Carritos: Redis si está configurado, si no en memoria del proceso
	var carts cart.Store = memory.NewCartStore(cfg.Cart.TTL)
	pingCarts := func(context.Context) error { return nil }
	if cfg.Redis.Enabled() {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		redisCarts := infraredis.NewCartStore(rdb, cfg.Cart.TTL)
		carts, pingCarts = redisCarts, redisCarts.Ping
	}

	publisher := events.NewKafkaPublisher(cfg.Kafka)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	if err := authUC.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		log.Fatal().Err(err).Msg("crear administrador inicial")
	}

	inventoryUC := inventory.NewUseCase(store.txRunner, store.products, store.movements, store.customers, publisher, appMetrics)
	cartSvc := cart.NewService(carts, store.products)
	engine := order.NewEngine(store.txRunner, cartSvc, publisher, appMetrics)
	lifecycle := order.NewLifecycle(store.txRunner, publisher)
	orderUC := order.NewUseCase(engine, lifecycle, store.orders, cartSvc)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(log.FiberMiddleware())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Inventario API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		pingCtx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		status := fiber.Map{"status": "ok", "service": cfg.App.Name}
		if err := store.ping(pingCtx); err != nil {
			status["status"], status["storage"] = "degraded", err.Error()
		}
		if err := pingCarts(pingCtx); err != nil {
			status["status"], status["carts"] = "degraded", err.Error()
		}
		if status["status"] != "ok" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		return c.JSON(status)
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ProductUC:   catalog.NewProductUseCase(store.txRunner, store.products, store.categories, store.suppliers),
		CategoryUC:  catalog.NewCategoryUseCase(store.categories),
		SupplierUC:  catalog.NewSupplierUseCase(store.suppliers),
		CustomerUC:  catalog.NewCustomerUseCase(store.customers),
		InventoryUC: inventoryUC,
		CartSvc:     cartSvc,
		OrderUC:     orderUC,
		JWTSecret:   cfg.JWT.Secret,
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
	if closer, ok := publisher.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar publicador de eventos")
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cerrar tracing")
	}

	log.Info().Msg("aplicación detenida")
}
