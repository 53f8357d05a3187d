package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// MovementHandler maneja las peticiones HTTP de movimientos y kardex (protegido).
type MovementHandler struct {
	dispatcher *inventory.Dispatcher
	history    *inventory.HistoryService
	log        zerolog.Logger
}

// NewMovementHandler construye el handler.
func NewMovementHandler(dispatcher *inventory.Dispatcher, history *inventory.HistoryService, log zerolog.Logger) *MovementHandler {
	return &MovementHandler{dispatcher: dispatcher, history: history, log: log}
}

// Register godoc
// @Summary      Registrar movimiento
// @Description  Resuelve el ítem por item_id, tag, code o name (lo crea si se envía name + categoría) y aplica el movimiento.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.MovementRequest  true  "type: RECEIPT | ISSUE | ADJUSTMENT"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Register(c *fiber.Ctx) error {
	return h.dispatch(c, "")
}

// Receipt godoc
// @Summary  Entrada directa
// @Tags     movements
// @Security Bearer
// @Router   /api/movements/receipt [post]
func (h *MovementHandler) Receipt(c *fiber.Ctx) error {
	return h.dispatch(c, entity.MovementReceipt)
}

// Issue godoc
// @Summary  Salida directa
// @Tags     movements
// @Security Bearer
// @Router   /api/movements/issue [post]
func (h *MovementHandler) Issue(c *fiber.Ctx) error {
	return h.dispatch(c, entity.MovementIssue)
}

// Adjustment godoc
// @Summary  Ajuste directo; quantity es el delta firmado
// @Tags     movements
// @Security Bearer
// @Router   /api/movements/adjustment [post]
func (h *MovementHandler) Adjustment(c *fiber.Ctx) error {
	return h.dispatch(c, entity.MovementAdjustment)
}

// dispatch kind vacío respeta el type del body; si no, lo fija la ruta.
func (h *MovementHandler) dispatch(c *fiber.Ctx, kind entity.MovementKind) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if kind != "" {
		in.Type = string(kind)
	}
	out, err := h.dispatcher.DispatchFromRequest(c.UserContext(), actorID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// History godoc
// @Summary      Historial de movimientos
// @Description  Los roles no privilegiados sólo ven sus propios movimientos. Orden: más reciente primero.
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        item_id  query  string  false  "Filtrar por ítem"
// @Param        type     query  string  false  "RECEIPT | ISSUE | ADJUSTMENT"
// @Param        from     query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        to       query  string  false  "RFC3339 o YYYY-MM-DD (incluye el día completo)"
// @Param        limit    query  int     false  "default 50, máximo 200"
// @Param        offset   query  int     false  "desplazamiento"
// @Success      200  {object}  dto.MovementHistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) History(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.MovementHistoryRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	from, err := parseQueryTime(in.From, false)
	if err != nil {
		return writeError(c, h.log, domain.Invalid("from: %v", err))
	}
	to, err := parseQueryTime(in.To, true)
	if err != nil {
		return writeError(c, h.log, domain.Invalid("to: %v", err))
	}

	page, err := h.history.List(c.UserContext(), inventory.HistoryQuery{
		ActorID: actorID,
		ItemID:  strings.TrimSpace(in.ItemID),
		Kind:    entity.MovementKind(strings.ToUpper(strings.TrimSpace(in.Type))),
		From:    from,
		To:      to,
		Limit:   in.Limit,
		Offset:  in.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.MovementHistoryResponse{
		Limit:  page.Limit,
		Offset: page.Offset,
		Count:  page.Count,
		Items:  make([]dto.MovementDTO, 0, len(page.Items)),
	}
	for _, m := range page.Items {
		out.Items = append(out.Items, inventory.ToMovementDTO(m))
	}
	return c.JSON(out)
}

const dateLayout = "2006-01-02"

// parseQueryTime acepta RFC3339 o fecha sola. Con endOfDay una fecha sola cubre el día completo.
func parseQueryTime(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
