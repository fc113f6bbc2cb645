package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// crudUseCase forma común de los casos de uso de categorías, proveedores y clientes.
type crudUseCase[Req, Resp any] interface {
	Create(ctx context.Context, in Req) (*Resp, error)
	GetByID(ctx context.Context, id string) (*Resp, error)
	List(ctx context.Context) ([]Resp, error)
	Update(ctx context.Context, id string, in Req) (*Resp, error)
	Delete(ctx context.Context, id string) error
}

// CatalogHandler CRUD HTTP sobre un crudUseCase.
type CatalogHandler[Req, Resp any] struct {
	uc crudUseCase[Req, Resp]
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler[Req, Resp any](uc crudUseCase[Req, Resp]) *CatalogHandler[Req, Resp] {
	return &CatalogHandler[Req, Resp]{uc: uc}
}

// mount registra las rutas; writeGuards se aplican solo a las de escritura.
func (h *CatalogHandler[Req, Resp]) mount(r fiber.Router, writeGuards ...fiber.Handler) {
	guarded := func(hd fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, writeGuards...), hd)
	}
	r.Get("/", h.List)
	r.Get("/:id", h.GetByID)
	r.Post("/", guarded(h.Create)...)
	r.Put("/:id", guarded(h.Update)...)
	r.Delete("/:id", guarded(h.Delete)...)
}

// Create POST /
func (h *CatalogHandler[Req, Resp]) Create(c *fiber.Ctx) error {
	var in Req
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID GET /:id
func (h *CatalogHandler[Req, Resp]) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List GET /
func (h *CatalogHandler[Req, Resp]) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		out = []Resp{}
	}
	return c.JSON(out)
}

// Update PUT /:id
func (h *CatalogHandler[Req, Resp]) Update(c *fiber.Ctx) error {
	var in Req
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /:id
func (h *CatalogHandler[Req, Resp]) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
