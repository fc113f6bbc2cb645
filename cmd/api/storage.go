package main

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-cacc/internal/application/inventory"
	"github.com/jhoicas/inventario-cacc/internal/application/order"
	"github.com/jhoicas/inventario-cacc/internal/domain/repository"
	"github.com/jhoicas/inventario-cacc/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-cacc/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-cacc/pkg/config"
	"github.com/jhoicas/inventario-cacc/pkg/migrate"
)

// txRunner lo implementan tanto postgres.TxRunner como memory.TxRunner.
type txRunner interface {
	inventory.TxRunner
	order.TxRunner
}

// storage repositorios del almacén transaccional elegido por STORAGE_DRIVER.
type storage struct {
	txRunner   txRunner
	products   repository.ProductRepository
	movements  repository.InventoryMovementRepository
	orders     repository.OrderRepository
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
	customers  repository.CustomerRepository
	users      repository.UserRepository
	ping       func(context.Context) error
	close      func()
}

func newStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.App.StorageDriver {
	case "memory":
		s := memory.NewStore(memory.WithLockTimeout(cfg.DB.LockTimeout))
		return &storage{
			txRunner:   memory.NewTxRunner(s),
			products:   memory.NewProductRepository(s),
			movements:  memory.NewInventoryMovementRepository(s),
			orders:     memory.NewOrderRepository(s),
			categories: memory.NewCategoryRepository(s),
			suppliers:  memory.NewSupplierRepository(s),
			customers:  memory.NewCustomerRepository(s),
			users:      memory.NewUserRepository(s),
			ping:       func(context.Context) error { return nil },
			close:      func() {},
		}, nil

	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.DB.MigrationsAutorun {
			if err := migrate.AutoRun(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return &storage{
			txRunner:   postgres.NewTxRunner(pool, cfg.DB.LockTimeout),
			products:   postgres.NewProductRepository(pool),
			movements:  postgres.NewInventoryMovementRepository(pool),
			orders:     postgres.NewOrderRepository(pool),
			categories: postgres.NewCategoryRepository(pool),
			suppliers:  postgres.NewSupplierRepository(pool),
			customers:  postgres.NewCustomerRepository(pool),
			users:      postgres.NewUserRepository(pool),
			ping:       pool.Ping,
			close:      pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("STORAGE_DRIVER desconocido: %q", cfg.App.StorageDriver)
}
