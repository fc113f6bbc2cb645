package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-cacc/internal/application/cart"
	"github.com/jhoicas/inventario-cacc/internal/application/dto"
)

// CartHandler carrito de la identidad autenticada. Todas las respuestas
// devuelven el carrito resultante.
type CartHandler struct {
	svc *cart.Service
}

// NewCartHandler construye el handler.
func NewCartHandler(svc *cart.Service) *CartHandler {
	return &CartHandler{svc: svc}
}

// Get godoc
// @Summary      Ver carrito
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CartResponse
// @Router       /api/cart [get]
func (h *CartHandler) Get(c *fiber.Ctx) error {
	return h.view(c, fiber.StatusOK)
}

// AddItem godoc
// @Summary      Agregar producto al carrito
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddCartItemRequest  true  "product_id, quantity"
// @Success      201   {object}  dto.CartResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cart/items [post]
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var in dto.AddCartItemRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	if _, err := h.svc.Add(c.UserContext(), GetUserID(c), in.ProductID, in.Quantity); err != nil {
		return respondError(c, err)
	}
	return h.view(c, fiber.StatusCreated)
}

// UpdateItem godoc
// @Summary      Cambiar cantidad de una línea
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path  string                     true  "ID del producto"
// @Param        body       body  dto.UpdateCartItemRequest  true  "quantity"
// @Success      200   {object}  dto.CartResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cart/items/{productId} [put]
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.UpdateCartItemRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	if err := h.svc.SetQuantity(c.UserContext(), GetUserID(c), c.Params("productId"), in.Quantity); err != nil {
		return respondError(c, err)
	}
	return h.view(c, fiber.StatusOK)
}

// RemoveItem DELETE /api/cart/items/:productId
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	if err := h.svc.Remove(c.UserContext(), GetUserID(c), c.Params("productId")); err != nil {
		return respondError(c, err)
	}
	return h.view(c, fiber.StatusOK)
}

// Clear DELETE /api/cart
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if err := h.svc.Clear(c.UserContext(), GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return h.view(c, fiber.StatusOK)
}

func (h *CartHandler) view(c *fiber.Ctx, status int) error {
	out, err := h.svc.View(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(status).JSON(out)
}
