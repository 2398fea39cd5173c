package memory

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/jhoicas/interbranch-api/internal/domain/entity"
)

// Seed datos iniciales para DB_DRIVER=memory (sucursales y existencias de arranque).
type Seed struct {
	TenantID string       `mapstructure:"tenant_id"`
	Branches []BranchSeed `mapstructure:"branches"`
	Stock    []StockSeed  `mapstructure:"stock"`
}

// BranchSeed sucursal inicial.
type BranchSeed struct {
	ID      string `mapstructure:"id"`
	Code    string `mapstructure:"code"`
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
}

// StockSeed existencia inicial; la cantidad va como texto para no perder precisión.
type StockSeed struct {
	ProductID string `mapstructure:"product_id"`
	BranchID  string `mapstructure:"branch_id"`
	Quantity  string `mapstructure:"quantity"`
}

// LoadSeed lee el archivo (yaml, json o toml según la extensión).
func LoadSeed(path string) (*Seed, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("memory: leer semilla %s: %w", path, err)
	}
	var s Seed
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("memory: decodificar semilla: %w", err)
	}
	if s.TenantID == "" {
		return nil, fmt.Errorf("memory: la semilla requiere tenant_id")
	}
	return &s, nil
}

// Apply carga la semilla sobre el estado confirmado.
func (s *Store) Apply(seed *Seed) error {
	now := time.Now()
	st, release := view{store: s}.write()
	defer release()
	for _, b := range seed.Branches {
		if b.ID == "" {
			return fmt.Errorf("memory: sucursal sin id en la semilla")
		}
		st.branches[b.ID] = entity.Branch{
			ID: b.ID, TenantID: seed.TenantID, Code: b.Code, Name: b.Name, Address: b.Address,
			Active: true, CreatedAt: now, UpdatedAt: now,
		}
	}
	for _, it := range seed.Stock {
		qty, err := decimal.NewFromString(it.Quantity)
		if err != nil || qty.IsNegative() {
			return fmt.Errorf("memory: cantidad inválida %q para %s", it.Quantity, it.ProductID)
		}
		st.stock[stockKey{seed.TenantID, it.ProductID, it.BranchID}] = entity.StockLevel{
			TenantID: seed.TenantID, ProductID: it.ProductID, BranchID: it.BranchID, Quantity: qty, UpdatedAt: now,
		}
	}
	return nil
}

// SetStock fija una existencia sobre el estado confirmado (tests y semillas).
func (s *Store) SetStock(tenantID, productID, branchID string, qty decimal.Decimal) {
	st, release := view{store: s}.write()
	defer release()
	st.stock[stockKey{tenantID, productID, branchID}] = entity.StockLevel{
		TenantID: tenantID, ProductID: productID, BranchID: branchID, Quantity: qty, UpdatedAt: time.Now(),
	}
}
