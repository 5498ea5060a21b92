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
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/piecework-api/internal/bootstrap"
	httpRouter "github.com/jhoicas/piecework-api/internal/interfaces/http"
	"github.com/jhoicas/piecework-api/pkg/config"
	"github.com/jhoicas/piecework-api/pkg/logger"
)

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
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es requerido")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	container, err := bootstrap.Build(ctx, cfg, log.Component("usecases"), true)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar dependencias")
	}
	defer container.Close()

	// Invalidación de caché publicada por otras instancias.
	if container.Cache != nil {
		if err := container.Cache.ListenForInvalidation(ctx, log.Component("cache")); err != nil {
			log.Warn().Err(err).Msg("sin suscripción a invalidaciones de caché")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))
	app.Use("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	// Swagger UI: http://localhost:<port>/docs (solo si existe el archivo)
	if _, err := os.Stat(cfg.App.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.App.SwaggerFile,
			Path:     "docs",
			Title:    "Piecework API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	if cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Catalog:   container.Catalog,
		Resolver:  container.Resolver,
		Accrual:   container.Accrual,
		Stats:     container.Stats,
		Reports:   container.Reports,
		JWTSecret: cfg.JWT.Secret,
		Logger:    log.Component("http"),
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
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
