// @title						Produccion API
// @version					1.0
// @description				Núcleo de producción e inventario: lotes por peso, inventario por unidades, recetas, ensamblajes y transferencias.
// @BasePath					/
// @securityDefinitions.apikey	Bearer
// @in							header
// @name						Authorization
// @description				Bearer <token>
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
	_ "github.com/jhoicas/Produccion-api/docs"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/production"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/catalog"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/sqlite"
	httpRouter "github.com/jhoicas/Produccion-api/internal/interfaces/http"
	"github.com/jhoicas/Produccion-api/pkg/config"
	"github.com/jhoicas/Produccion-api/pkg/logger"
)

// storage backend del libro ya abierto.
type storage struct {
	tx    inventory.TxRunner
	repos inventory.Repos
	close io.Closer
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

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
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	reg := metrics.NewRegistry()
	ledgerMetrics := metrics.NewLedger(reg)

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log, ledgerMetrics)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("abrir almacenamiento")
	}
	defer store.close.Close()
	if err := loadCatalog(ctx, cfg, log, store.tx); err != nil {
		log.Fatal().Err(err).Str("path", cfg.Storage.CatalogCSV).Msg("cargar catálogo")
	}

	lotUC := inventory.NewLotUseCase(store.tx, store.repos, log, ledgerMetrics)
	stockUC := inventory.NewStockUseCase(store.tx, store.repos, log, ledgerMetrics, cfg.Ledger.DefaultMinStock)
	transferUC := inventory.NewTransferUseCase(store.tx, log, ledgerMetrics, cfg.Ledger.TransferLotAware)
	recipeUC := production.NewRecipeUseCase(store.tx, store.repos, log)
	assemblyUC := production.NewAssemblyUseCase(store.tx, log, ledgerMetrics)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Produccion API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Storage.Driver})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(reg)))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Lots:      lotUC,
		Stock:     stockUC,
		Transfers: transferUC,
		Recipes:   recipeUC,
		Assembly:  assemblyUC,
		JWTSecret: cfg.JWT.Secret,
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

// openStorage abre el backend configurado. En postgres aplica las migraciones si DB_AUTO_MIGRATE.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Ledger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		s := memory.New()
		log.Warn().Msg("libro en memoria: los datos se pierden al reiniciar")
		return &storage{tx: s, repos: s.Repos(), close: closerFunc(func() error { return nil })}, nil

	case config.StorageSQLite:
		s, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", s.Path()).Msg("libro persistido en SQLite")
		return &storage{tx: s, repos: s.Repos(), close: s}, nil

	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		if cfg.DB.AutoMigrate {
			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				pool.Close()
				return nil, err
			}
			log.Info().Strs("applied", applied).Msg("migraciones aplicadas")
		}
		tx := postgres.NewTxRunner(pool, cfg.Ledger.TxMaxRetries, postgres.WithRetryHook(func(attempt int, err error) {
			m.TxRetry(attempt, err)
			log.Warn().Err(err).Int("attempt", attempt).Msg("reintentando transacción")
		}))
		return &storage{
			tx:    tx,
			repos: postgres.NewRepos(pool),
			close: closerFunc(func() error { pool.Close(); return nil }),
		}, nil
	}
}

// loadCatalog crea las bodegas, productos y presentaciones de CATALOG_CSV que falten. Sin
// archivo, los almacenamientos embebidos arrancan vacíos y solo se avisa.
func loadCatalog(ctx context.Context, cfg *config.Config, log *logger.Logger, tx inventory.TxRunner) error {
	if cfg.Storage.CatalogCSV == "" {
		if cfg.Storage.Driver != config.StoragePostgres {
			log.Warn().Str("driver", cfg.Storage.Driver).Msg("sin CATALOG_CSV: el catálogo embebido está vacío")
		}
		return nil
	}
	cat, err := catalog.Open(cfg.Storage.CatalogCSV)
	if err != nil {
		return err
	}
	res, err := catalog.Load(ctx, tx, cat)
	if err != nil {
		return err
	}
	log.Info().Str("path", cfg.Storage.CatalogCSV).Int("created", res.Created).
		Int("existing", res.Existing).Msg("catálogo cargado")
	return nil
}
