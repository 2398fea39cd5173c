// seed carga sucursales y existencias iniciales en PostgreSQL.
//
// Uso: go run ./cmd/seed -file seed.yaml [-stock-csv inventario.csv] [-latin1] [-sep ';']
//
// El archivo -file usa el mismo formato que MEMORY_SEED_FILE (yaml, json o toml).
// El CSV opcional trae columnas product_id, branch_id, quantity; los exportes de los POS
// antiguos vienen en ISO-8859-1 y se leen con -latin1.
// Las existencias entran como ajustes positivos, con su movimiento de auditoría.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/interbranch-api/internal/application/inventory"
	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
	"github.com/jhoicas/interbranch-api/internal/infrastructure/memory"
	"github.com/jhoicas/interbranch-api/internal/infrastructure/postgres"
	"github.com/jhoicas/interbranch-api/pkg/config"
	"github.com/jhoicas/interbranch-api/pkg/logger"
)

func main() {
	seedPath := flag.String("file", "seed.yaml", "archivo de semilla (sucursales y existencias)")
	csvPath := flag.String("stock-csv", "", "CSV opcional de existencias")
	latin1 := flag.Bool("latin1", false, "el CSV viene en ISO-8859-1")
	sep := flag.String("sep", ",", "separador del CSV")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "interbranch-seed"})

	seed, err := memory.LoadSeed(*seedPath)
	if err != nil {
		log.Fatal().Err(err).Msg("leer semilla")
	}
	if *csvPath != "" {
		f, err := os.Open(*csvPath)
		if err != nil {
			log.Fatal().Err(err).Msg("abrir CSV")
		}
		rows, err := parseStockCSV(f, *latin1, []rune(*sep)[0])
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Msg("leer CSV")
		}
		seed.Stock = append(seed.Stock, rows...)
	}

	ctx := context.Background()
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

	branches := postgres.NewBranchRepository(pool)
	now := time.Now()
	for _, b := range seed.Branches {
		err := branches.Save(ctx, &entity.Branch{
			ID: b.ID, TenantID: seed.TenantID, Code: b.Code, Name: b.Name, Address: b.Address,
			Active: true, CreatedAt: now, UpdatedAt: now,
		})
		if err != nil {
			log.Fatal().Err(err).Str("branch_id", b.ID).Msg("guardar sucursal")
		}
	}

	txRunner := postgres.NewTxRunner(pool, time.Duration(cfg.Settlement.LockTimeoutMS)*time.Millisecond)
	adjust := inventory.NewAdjustmentUseCase(txRunner, branches, inventory.NewStockLedger())
	rc := domain.RequestContext{TenantID: seed.TenantID, ActorID: "seed"}
	loaded := 0
	for _, it := range seed.Stock {
		qty, err := decimal.NewFromString(it.Quantity)
		if err != nil || qty.IsNegative() {
			log.Fatal().Str("product_id", it.ProductID).Str("quantity", it.Quantity).Msg("cantidad inválida")
		}
		if qty.IsZero() {
			continue
		}
		_, err = adjust.RegisterAdjustment(ctx, rc, inventory.AdjustmentInput{
			ProductID: it.ProductID,
			BranchID:  it.BranchID,
			Quantity:  qty,
			Reason:    "carga inicial",
		})
		if err != nil {
			log.Fatal().Err(err).Str("product_id", it.ProductID).Str("branch_id", it.BranchID).Msg("cargar existencia")
		}
		loaded++
	}

	fmt.Printf("Semilla aplicada: %d sucursales, %d existencias\n", len(seed.Branches), loaded)
}
