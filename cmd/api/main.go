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

	_ "github.com/jhoicas/litpedidos-api/docs"
	"github.com/jhoicas/litpedidos-api/internal/application/inventory"
	"github.com/jhoicas/litpedidos-api/internal/application/orders"
	"github.com/jhoicas/litpedidos-api/internal/application/reports"
	"github.com/jhoicas/litpedidos-api/internal/domain/repository"
	"github.com/jhoicas/litpedidos-api/internal/infrastructure/catalog"
	"github.com/jhoicas/litpedidos-api/internal/infrastructure/memory"
	"github.com/jhoicas/litpedidos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/litpedidos-api/internal/interfaces/http"
	"github.com/jhoicas/litpedidos-api/pkg/config"
	"github.com/jhoicas/litpedidos-api/pkg/logger"
)

// backend repositorios y runners de transacción de un driver.
type backend struct {
	ledgerTx  inventory.TxRunner
	ordersTx  orders.OrdersTxRunner
	orgs      repository.OrganizationRepository
	lits      repository.LiteratureRepository
	orders    repository.OrderRepository
	records   repository.InventoryRecordRepository
	txns      repository.TransactionRepository
	closeFunc func()
}

// @title                       Litpedidos API
// @version                     1.0
// @description                 Pedidos de literatura entre organizaciones y reserva de inventario.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.App.DBDriver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	ctx := context.Background()
	var be backend
	switch cfg.App.DBDriver {
	case "memory":
		store := memory.NewStore()
		if cfg.App.CatalogPath != "" {
			cat, err := catalog.LoadFiles(cfg.App.CatalogPath, "", false)
			if err != nil {
				log.Fatal().Err(err).Str("path", cfg.App.CatalogPath).Msg("cargar catálogo")
			}
			cat.Apply(store)
			log.Info().
				Int("organizations", len(cat.Organizations)).
				Int("literature", len(cat.Literature)).
				Msg("catálogo cargado en memoria")
		}
		be = backend{
			ledgerTx: store, ordersTx: store,
			orgs: store.Organizations(), lits: store.Literature(), orders: store.Orders(),
			records: store.Records(), txns: store.Transactions(),
			closeFunc: func() {},
		}
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		txRunner := postgres.NewTxRunner(pool, time.Duration(cfg.Orders.TxTimeoutSeconds)*time.Second)
		be = backend{
			ledgerTx: txRunner, ordersTx: txRunner,
			orgs:      postgres.NewOrganizationRepository(pool),
			lits:      postgres.NewLiteratureRepository(pool),
			orders:    postgres.NewOrderRepository(pool),
			records:   postgres.NewInventoryRecordRepository(pool),
			txns:      postgres.NewTransactionRepository(pool),
			closeFunc: pool.Close,
		}
	}
	defer be.closeFunc()

	ledgerUC := inventory.NewLedgerUseCase(be.ledgerTx, be.records, be.orgs, be.lits, log.Zerolog())
	lifecycleUC := orders.NewLifecycleUseCase(be.ordersTx, be.orders, be.orgs, be.lits, ledgerUC, orders.Config{
		NumberPrefix:             cfg.Orders.NumberPrefix,
		RecordIncomingOnDelivery: cfg.Orders.RecordIncomingOnDelivery,
	}, log.Zerolog())
	reportsUC := reports.NewUseCase(be.orders, be.txns, log.Zerolog())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Litpedidos API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Orders:    lifecycleUC,
		Ledger:    ledgerUC,
		Reports:   reportsUC,
		OrgRepo:   be.orgs,
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
