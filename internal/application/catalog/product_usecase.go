package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-cacc/internal/application/dto"
	"github.com/jhoicas/inventario-cacc/internal/application/inventory"
	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
	"github.com/jhoicas/inventario-cacc/internal/domain/repository"
)

// initialStockDescription descripción del movimiento ENTRADA que acompaña a un producto nuevo.
const initialStockDescription = "Stock inicial"

// ProductUseCase casos de uso CRUD para productos. Stock se maneja vía movimientos.
type ProductUseCase struct {
	txRunner     inventory.TxRunner
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
	ledger       *inventory.StockLedger
	recorder     *inventory.MovementRecorder
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	txRunner inventory.TxRunner,
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
) *ProductUseCase {
	ledger := inventory.NewStockLedger()
	return &ProductUseCase{
		txRunner:     txRunner,
		repo:         repo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		ledger:       ledger,
		recorder:     inventory.NewMovementRecorder(ledger),
	}
}

// Create crea un producto. Si InitialStock > 0 se registra como ENTRADA en la misma transacción,
// así el stock coincide con el historial desde el inicio.
func (uc *ProductUseCase) Create(ctx context.Context, actor entity.Identity, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.Price.IsNegative() || in.InitialStock < 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.checkRefs(ctx, in.CategoryID, in.SupplierID); err != nil {
		return nil, err
	}
	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		SupplierID:  in.SupplierID,
		Price:       in.Price,
		Stock:       0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	var userID *string
	if actor.UserID != "" {
		id := actor.UserID
		userID = &id
	}
	err := uc.txRunner.Run(ctx, func(movRepo repository.InventoryMovementRepository, productRepo repository.ProductRepository) error {
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		if in.InitialStock == 0 {
			return nil
		}
		stock, err := uc.ledger.Adjust(ctx, productRepo, product.ID, in.InitialStock, entity.ReasonManual)
		if err != nil {
			return err
		}
		product.Stock = stock
		_, err = uc.recorder.Record(ctx, movRepo, inventory.RecordInput{
			ProductID:   product.ID,
			Type:        entity.MovementEntrada,
			Reason:      entity.ReasonManual,
			Quantity:    in.InitialStock,
			UserID:      userID,
			Description: initialStockDescription,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("product_id", product.ID).Int("stock", product.Stock).Msg("producto creado")
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar Stock (se maneja vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product.Price = *in.Price
	}
	if in.CategoryID != nil {
		product.CategoryID = in.CategoryID
	}
	if in.SupplierID != nil {
		product.SupplierID = in.SupplierID
	}
	if err := uc.checkRefs(ctx, in.CategoryID, in.SupplierID); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List devuelve una página del catálogo filtrado; Total cuenta todos los que cumplen el filtro.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest, q dto.ProductQuery) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	filter := repository.ProductFilter{
		Search:     strings.TrimSpace(q.Search),
		CategoryID: strings.TrimSpace(q.CategoryID),
		InStock:    q.InStock,
		Sort:       strings.TrimSpace(q.Sort),
	}
	if !filter.ValidSort() {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	start := min(page.Offset, len(list))
	end := min(start+page.Limit, len(list))
	items := make([]dto.ProductResponse, 0, end-start)
	for _, p := range list[start:end] {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Total: len(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(list)},
	}, nil
}

// Delete elimina un producto. Sus movimientos se eliminan y las líneas de pedido quedan sin producto.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func (uc *ProductUseCase) checkRefs(ctx context.Context, categoryID, supplierID *string) error {
	if categoryID != nil {
		c, err := uc.categoryRepo.GetByID(ctx, *categoryID)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrNotFound
		}
	}
	if supplierID != nil {
		s, err := uc.supplierRepo.GetByID(ctx, *supplierID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		SupplierID:  p.SupplierID,
		Price:       p.Price,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
