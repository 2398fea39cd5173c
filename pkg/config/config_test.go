package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, "TRF", cfg.Settlement.TransferPrefix)
	assert.Equal(t, 5000, cfg.Settlement.LockTimeoutMS)
	assert.Equal(t, 3, cfg.Settlement.DistributionRetry)
	assert.Equal(t, "1140", cfg.Accounts.Inventory)
	assert.Equal(t, "2180", cfg.Accounts.InterBranchPayable)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.Equal(t, "interbranch-api", cfg.DB.ApplicationName)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("DB_DRIVER", "Memory")
	v.Set("DB_AUTO_MIGRATE", "true")
	v.Set("TRANSFER_PREFIX", "TRS")
	v.Set("SETTLEMENT_LOCK_TIMEOUT_MS", "1500")
	v.Set("ACCOUNT_SALARY_EXPENSE", "5105")
	v.Set("MEMORY_SEED_FILE", "seed.yaml")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.DB.Driver)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, "TRS", cfg.Settlement.TransferPrefix)
	assert.Equal(t, 1500, cfg.Settlement.LockTimeoutMS)
	assert.Equal(t, "5105", cfg.Accounts.SalaryExpense)
	assert.Equal(t, "seed.yaml", cfg.DB.SeedFile)
}

func TestFromViper_DriverInvalido(t *testing.T) {
	v := viper.New()
	v.Set("DB_DRIVER", "mysql")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestFromViper_LockTimeoutInvalido(t *testing.T) {
	v := viper.New()
	v.Set("SETTLEMENT_LOCK_TIMEOUT_MS", "0")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss", DBName: "interbranch", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/interbranch?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
