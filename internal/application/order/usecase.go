package order

import (
	"context"

	"github.com/jhoicas/inventario-cacc/internal/application/dto"
	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
	"github.com/jhoicas/inventario-cacc/internal/domain/repository"
)

// UseCase operaciones de pedidos expuestas a la capa HTTP.
type UseCase struct {
	engine    *Engine
	lifecycle *Lifecycle
	orderRepo repository.OrderRepository
	carts     Carts
}

// NewUseCase construye el caso de uso.
func NewUseCase(engine *Engine, lifecycle *Lifecycle, orderRepo repository.OrderRepository, carts Carts) *UseCase {
	return &UseCase{engine: engine, lifecycle: lifecycle, orderRepo: orderRepo, carts: carts}
}

// Checkout toma el snapshot del carrito de la identidad y confirma el pedido.
func (uc *UseCase) Checkout(ctx context.Context, identity entity.Identity, in dto.CheckoutRequest) (*dto.OrderResponse, error) {
	if identity.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	cart, err := uc.carts.Get(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	o, err := uc.engine.Confirm(ctx, identity, cart.Snapshot(), in.DeliveryAddress, in.Notes)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// SetStatus cambia el estado de un pedido (solo administradores).
func (uc *UseCase) SetStatus(ctx context.Context, orderID string, in dto.UpdateOrderStatusRequest) (*dto.OrderResponse, error) {
	o, err := uc.lifecycle.SetStatus(ctx, orderID, in.Status)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// GetOrder devuelve el pedido con sus líneas. Solo el dueño o un administrador pueden verlo.
func (uc *UseCase) GetOrder(ctx context.Context, identity entity.Identity, orderID string) (*dto.OrderResponse, error) {
	o, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	if o.UserID != identity.UserID && !identity.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// MyOrders pedidos de la identidad con conteo por estado.
func (uc *UseCase) MyOrders(ctx context.Context, identity entity.Identity) (*dto.OrderListResponse, error) {
	if identity.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	list, err := uc.orderRepo.ListByUser(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	counts, err := uc.orderRepo.CountByStatus(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	return toOrderList(list, counts), nil
}

// AdminList todos los pedidos con conteo por estado.
func (uc *UseCase) AdminList(ctx context.Context) (*dto.OrderListResponse, error) {
	list, err := uc.orderRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := uc.orderRepo.CountByStatus(ctx, "")
	if err != nil {
		return nil, err
	}
	return toOrderList(list, counts), nil
}

func toOrderList(list []*entity.Order, counts map[entity.OrderStatus]int) *dto.OrderListResponse {
	out := &dto.OrderListResponse{
		Items: make([]dto.OrderResponse, 0, len(list)),
		Stats: dto.OrderStatsResponse{Counts: make(map[string]int, len(entity.OrderStatuses))},
	}
	for _, o := range list {
		out.Items = append(out.Items, ToOrderResponse(o))
	}
	for _, st := range entity.OrderStatuses {
		out.Stats.Counts[string(st)] = counts[st]
		out.Stats.Total += counts[st]
	}
	return out
}

// ToOrderResponse mapea el pedido (con líneas) a su DTO.
func ToOrderResponse(o *entity.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Username:        o.Username,
		Status:          string(o.Status),
		Total:           o.Total,
		DeliveryAddress: o.DeliveryAddress,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		Lines:           make([]dto.OrderLineResponse, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		resp.Lines = append(resp.Lines, dto.OrderLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal,
		})
	}
	return resp
}
