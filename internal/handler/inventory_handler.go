package handler

import (
	"net/http"

	"shop/internal/middleware"
	"shop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// InventoryUpdateRequest は在庫更新の入力です。
type InventoryUpdateRequest struct {
	Quantity *int   `json:"quantity"`
	Reason   string `json:"reason"`
}

// /api/inventory の公開APIと管理者API
type InventoryHandler struct {
	uc *usecase.InventoryUsecase
}

func NewInventoryHandler(uc *usecase.InventoryUsecase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

func (h *InventoryHandler) RegisterRoutes(e *echo.Echo, jwtSecret string) {
	g := e.Group("/api/inventory")

	g.GET("", h.checkStock)
	g.GET("/all", h.list)
	g.GET("/:sku", h.detail)

	//更新はADMINのみ
	g.PUT("/:sku", h.setQuantity, middleware.AuthJWT(jwtSecret), middleware.AdminRoleGuard())
}

// GET /api/inventory?skuCode=a&skuCode=b
func (h *InventoryHandler) checkStock(c echo.Context) error {
	skus := c.QueryParams()["skuCode"]

	out, err := h.uc.CheckStock(c.Request().Context(), skus)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InventoryHandler) list(c echo.Context) error {
	page, limit, err := parsePaging(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.ListInventory(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InventoryHandler) detail(c echo.Context) error {
	inv, err := h.uc.GetInventory(c.Request().Context(), c.Param("sku"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *InventoryHandler) setQuantity(c echo.Context) error {
	var req InventoryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.Quantity == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "quantity required"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	inv, err := h.uc.SetQuantity(c.Request().Context(), adminID, c.Param("sku"), *req.Quantity, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, inv)
}
