package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"marketplace-service/internal/service"
)

// IdempotentKeyHeader optionally tags a purchase request so a retry is not
// recorded twice.
const IdempotentKeyHeader = "Idempotent-Key"

type PurchaseHandler struct {
	purchaseService *service.PurchaseService
}

func NewPurchaseHandler(purchaseService *service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

type purchaseCreated struct {
	ID         int64 `json:"id"`
	UserID     int64 `json:"user_id"`
	TemplateID int64 `json:"template_id"`
}

func (h *PurchaseHandler) ListPurchases(c echo.Context) error {
	purchases, err := h.purchaseService.ListPurchases(c.Request().Context())
	if err != nil {
		return err
	}
	return respondList(c, purchases, len(purchases))
}

func (h *PurchaseHandler) ListUserPurchases(c echo.Context) error {
	userID, err := parseID(c, "userId", service.MsgUserNotFound)
	if err != nil {
		return err
	}
	purchases, err := h.purchaseService.ListUserPurchases(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respondList(c, purchases, len(purchases))
}

func (h *PurchaseHandler) GetPurchase(c echo.Context) error {
	id, err := parseID(c, "id", service.MsgPurchaseNotFound)
	if err != nil {
		return err
	}
	purchase, err := h.purchaseService.GetPurchase(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, "", purchase)
}

func (h *PurchaseHandler) CreatePurchase(c echo.Context) error {
	var in service.CreatePurchaseInput
	if err := c.Bind(&in); err != nil {
		return invalidPayload(err)
	}
	key := c.Request().Header.Get(IdempotentKeyHeader)

	purchase, err := h.purchaseService.CreatePurchase(c.Request().Context(), in, key)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusCreated, "Purchase created successfully", purchaseCreated{
		ID:         purchase.ID,
		UserID:     purchase.UserID,
		TemplateID: purchase.TemplateID,
	})
}

func (h *PurchaseHandler) DeletePurchase(c echo.Context) error {
	id, err := parseID(c, "id", service.MsgPurchaseNotFound)
	if err != nil {
		return err
	}
	if err := h.purchaseService.DeletePurchase(c.Request().Context(), id); err != nil {
		return err
	}
	return respondMessage(c, "Purchase deleted successfully")
}
