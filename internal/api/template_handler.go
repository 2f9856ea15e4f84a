package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"marketplace-service/internal/entity"
	"marketplace-service/internal/service"
)

type TemplateHandler struct {
	templateService *service.TemplateService
}

func NewTemplateHandler(templateService *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// ListTemplates accepts optional category, type and style query filters.
func (h *TemplateHandler) ListTemplates(c echo.Context) error {
	filter := entity.TemplateFilter{
		Category: c.QueryParam("category"),
		Type:     c.QueryParam("type"),
		Style:    c.QueryParam("style"),
	}
	templates, err := h.templateService.ListTemplates(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return respondList(c, templates, len(templates))
}

func (h *TemplateHandler) GetTemplate(c echo.Context) error {
	id, err := parseID(c, "id", service.MsgTemplateNotFound)
	if err != nil {
		return err
	}
	template, err := h.templateService.GetTemplate(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, "", template)
}

func (h *TemplateHandler) CreateTemplate(c echo.Context) error {
	var in service.CreateTemplateInput
	if err := c.Bind(&in); err != nil {
		return invalidPayload(err)
	}
	id, err := h.templateService.CreateTemplate(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusCreated, "Template created successfully", map[string]int64{"id": id})
}

func (h *TemplateHandler) UpdateTemplate(c echo.Context) error {
	id, err := parseID(c, "id", service.MsgTemplateNotFound)
	if err != nil {
		return err
	}
	var in service.UpdateTemplateInput
	if err := c.Bind(&in); err != nil {
		return invalidPayload(err)
	}
	if err := h.templateService.UpdateTemplate(c.Request().Context(), id, in); err != nil {
		return err
	}
	return respondMessage(c, "Template updated successfully")
}

func (h *TemplateHandler) DeleteTemplate(c echo.Context) error {
	id, err := parseID(c, "id", service.MsgTemplateNotFound)
	if err != nil {
		return err
	}
	if err := h.templateService.DeleteTemplate(c.Request().Context(), id); err != nil {
		return err
	}
	return respondMessage(c, "Template deleted successfully")
}
