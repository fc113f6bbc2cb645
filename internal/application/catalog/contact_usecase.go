package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-cacc/internal/application/dto"
	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
	"github.com/jhoicas/inventario-cacc/internal/domain/repository"
)

// SupplierUseCase CRUD de proveedores.
type SupplierUseCase struct {
	repo repository.SupplierRepository
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo}
}

func (uc *SupplierUseCase) Create(ctx context.Context, in dto.ContactRequest) (*dto.ContactResponse, error) {
	s := &entity.Supplier{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Phone:     in.Phone,
		Email:     in.Email,
		Address:   in.Address,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return supplierResponse(s), nil
}

func (uc *SupplierUseCase) GetByID(ctx context.Context, id string) (*dto.ContactResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return supplierResponse(s), nil
}

func (uc *SupplierUseCase) List(ctx context.Context) ([]dto.ContactResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ContactResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *supplierResponse(s))
	}
	return out, nil
}

func (uc *SupplierUseCase) Update(ctx context.Context, id string, in dto.ContactRequest) (*dto.ContactResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	s.Name, s.Phone, s.Email, s.Address = in.Name, in.Phone, in.Email, in.Address
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return supplierResponse(s), nil
}

// Delete elimina el proveedor; los productos quedan sin proveedor.
func (uc *SupplierUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func supplierResponse(s *entity.Supplier) *dto.ContactResponse {
	return &dto.ContactResponse{ID: s.ID, Name: s.Name, Phone: s.Phone, Email: s.Email, Address: s.Address, CreatedAt: s.CreatedAt}
}

// CustomerUseCase CRUD de clientes.
type CustomerUseCase struct {
	repo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

func (uc *CustomerUseCase) Create(ctx context.Context, in dto.ContactRequest) (*dto.ContactResponse, error) {
	c := &entity.Customer{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Phone:     in.Phone,
		Email:     in.Email,
		Address:   in.Address,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return customerResponse(c), nil
}

func (uc *CustomerUseCase) GetByID(ctx context.Context, id string) (*dto.ContactResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return customerResponse(c), nil
}

func (uc *CustomerUseCase) List(ctx context.Context) ([]dto.ContactResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ContactResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *customerResponse(c))
	}
	return out, nil
}

func (uc *CustomerUseCase) Update(ctx context.Context, id string, in dto.ContactRequest) (*dto.ContactResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	c.Name, c.Phone, c.Email, c.Address = in.Name, in.Phone, in.Email, in.Address
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return customerResponse(c), nil
}

// Delete elimina el cliente; sus movimientos conservan el historial sin cliente.
func (uc *CustomerUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func customerResponse(c *entity.Customer) *dto.ContactResponse {
	return &dto.ContactResponse{ID: c.ID, Name: c.Name, Phone: c.Phone, Email: c.Email, Address: c.Address, CreatedAt: c.CreatedAt}
}
