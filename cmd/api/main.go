// @title        Interbranch API
// @version      1.0
// @description  Motor de traslados entre sucursales y liquidación contable.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
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

	_ "github.com/jhoicas/interbranch-api/docs"
	"github.com/jhoicas/interbranch-api/internal/application/accounting"
	"github.com/jhoicas/interbranch-api/internal/application/inventory"
	"github.com/jhoicas/interbranch-api/internal/application/production"
	"github.com/jhoicas/interbranch-api/internal/application/settlement"
	acct "github.com/jhoicas/interbranch-api/internal/domain/accounting"
	"github.com/jhoicas/interbranch-api/internal/domain/repository"
	"github.com/jhoicas/interbranch-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/interbranch-api/internal/infrastructure/pdf"
	"github.com/jhoicas/interbranch-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/interbranch-api/internal/interfaces/http"
	"github.com/jhoicas/interbranch-api/pkg/config"
	"github.com/jhoicas/interbranch-api/pkg/logger"
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
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	ctx := context.Background()

	// Persistencia: PostgreSQL en producción, store en memoria para desarrollo y demos.
	var (
		txRunner repository.TxRunner
		repos    repository.Tx
		branches repository.BranchRepository
	)
	switch cfg.DB.Driver {
	case "memory":
		store := memory.NewStore()
		if cfg.DB.SeedFile != "" {
			seed, err := memory.LoadSeed(cfg.DB.SeedFile)
			if err != nil {
				log.Fatal().Err(err).Str("file", cfg.DB.SeedFile).Msg("leer semilla")
			}
			if err := store.Apply(seed); err != nil {
				log.Fatal().Err(err).Msg("aplicar semilla")
			}
			log.Info().Str("file", cfg.DB.SeedFile).Int("branches", len(seed.Branches)).Msg("semilla cargada")
		}
		txRunner, repos, branches = store, store.Repos(), store.Branches()
	default:
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool, time.Duration(cfg.Settlement.LockTimeoutMS)*time.Millisecond)
		repos = postgres.Repositories(pool)
		branches = postgres.NewBranchRepository(pool)
	}

	accounts := acct.Accounts{
		Inventory:             cfg.Accounts.Inventory,
		InterBranchReceivable: cfg.Accounts.InterBranchReceivable,
		InterBranchPayable:    cfg.Accounts.InterBranchPayable,
		SalaryExpense:         cfg.Accounts.SalaryExpense,
		SalaryClearing:        cfg.Accounts.SalaryClearing,
	}

	ledger := inventory.NewStockLedger()
	transferManager := inventory.NewTransferManager(txRunner, repos.Transfers, repos.Movements, branches, ledger, cfg.Settlement.TransferPrefix)
	journalPoster := accounting.NewJournalPoster(txRunner, repos.Journal, branches)
	balanceTracker := accounting.NewBalanceTracker(txRunner, repos.Balances)
	payrollAllocator := accounting.NewPayrollAllocator(repos.Payroll, branches, journalPoster, balanceTracker, accounts)
	orchestrator := settlement.NewOrchestrator(txRunner, transferManager, journalPoster, balanceTracker, payrollAllocator,
		settlement.WithAccounts(accounts),
		settlement.WithLogger(log.Component("settlement")),
	)
	distributeUC := production.NewDistributeUseCase(transferManager, orchestrator,
		production.DefaultPolicy(cfg.Settlement.DistributionRetry, cfg.Settlement.DistributionBaseMS), log.Component("production"))

	// PDF: guía de traslado que acompaña la mercancía
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	slipUC := inventory.NewSlipUseCase(repos.Transfers, branches, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Interbranch API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "db_driver": cfg.DB.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Transfers:    transferManager,
		Slips:        slipUC,
		StockQuery:   inventory.NewStockQuery(repos.Stock),
		Adjustments:  inventory.NewAdjustmentUseCase(txRunner, branches, ledger),
		BranchQuery:  inventory.NewBranchQuery(branches),
		Journal:      journalPoster,
		Balances:     balanceTracker,
		Payroll:      payrollAllocator,
		Orchestrator: orchestrator,
		Distribute:   distributeUC,
		Logger:       log.Component("http"),
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

	log.Info().Msg("aplicación detenida")
}
