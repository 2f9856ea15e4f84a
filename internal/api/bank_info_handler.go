package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"marketplace-service/internal/service"
)

type BankInfoHandler struct {
	bankInfoService *service.BankInfoService
}

func NewBankInfoHandler(bankInfoService *service.BankInfoService) *BankInfoHandler {
	return &BankInfoHandler{bankInfoService: bankInfoService}
}

func (h *BankInfoHandler) ListBankInfo(c echo.Context) error {
	infos, err := h.bankInfoService.ListBankInfo(c.Request().Context())
	if err != nil {
		return err
	}
	return respondList(c, infos, len(infos))
}

func (h *BankInfoHandler) GetBankInfo(c echo.Context) error {
	id, err := parseID(c, "id", service.MsgBankInfoNotFound)
	if err != nil {
		return err
	}
	info, err := h.bankInfoService.GetBankInfo(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, "", info)
}

func (h *BankInfoHandler) CreateBankInfo(c echo.Context) error {
	var in service.CreateBankInfoInput
	if err := c.Bind(&in); err != nil {
		return invalidPayload(err)
	}
	info, err := h.bankInfoService.CreateBankInfo(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusCreated, "Bank info created successfully", info)
}

func (h *BankInfoHandler) UpdateBankInfo(c echo.Context) error {
	id, err := parseID(c, "id", service.MsgBankInfoNotFound)
	if err != nil {
		return err
	}
	var in service.UpdateBankInfoInput
	if err := c.Bind(&in); err != nil {
		return invalidPayload(err)
	}
	if err := h.bankInfoService.UpdateBankInfo(c.Request().Context(), id, in); err != nil {
		return err
	}
	return respondMessage(c, "Bank info updated successfully")
}

func (h *BankInfoHandler) DeleteBankInfo(c echo.Context) error {
	id, err := parseID(c, "id", service.MsgBankInfoNotFound)
	if err != nil {
		return err
	}
	if err := h.bankInfoService.DeleteBankInfo(c.Request().Context(), id); err != nil {
		return err
	}
	return respondMessage(c, "Bank info deleted successfully")
}
