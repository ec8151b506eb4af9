package handler

import (
	"net/http"
	"strconv"

	"mealportal/internal/middleware"
	"mealportal/internal/model"
	"mealportal/internal/service"
	"mealportal/pkg/pagination"
	"mealportal/pkg/response"

	"github.com/gin-gonic/gin"
)

type MenuHandler struct {
	menuService service.MenuService
}

func NewMenuHandler(menuService service.MenuService) *MenuHandler {
	return &MenuHandler{menuService: menuService}
}

func (h *MenuHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyRole := middleware.RequireRole(
		model.SessionRoleAdmin, model.SessionRoleGA,
		model.SessionRoleKitchen, model.SessionRoleStaff,
	)
	adminOnly := middleware.RequireRole(model.SessionRoleAdmin, model.SessionRoleGA)

	menu := router.Group("/api/menu")
	{
		menu.GET("", anyRole, h.ListMenuItems)
		menu.GET("/:id", anyRole, h.GetMenuItem)
		menu.POST("", adminOnly, h.CreateMenuItem)
		menu.PUT("/:id", adminOnly, h.UpdateMenuItem)
		menu.DELETE("/:id", adminOnly, h.DeleteMenuItem)
	}
}

// ListMenuItems returns the catalog, filterable by category and availability
// @Summary      List menu items
// @Tags         menu
// @Produce      json
// @Security     BearerAuth
// @Param        category available_only query string false "Filters"
// @Success      200  {object}  response.PagedResponse
// @Router       /menu [get]
func (h *MenuHandler) ListMenuItems(c *gin.Context) {
	params := pagination.Parse(c)
	availableOnly, _ := strconv.ParseBool(c.DefaultQuery("available_only", "false"))

	items, total, err := h.menuService.ListMenuItems(c.Request.Context(), c.Query("category"), availableOnly, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, items, total, params.Page, params.Limit))
}

// GetMenuItem returns one catalog entry
// @Summary      Get menu item
// @Tags         menu
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Menu item ID"
// @Success      200  {object}  response.Response{data=service.MenuItemResponse}
// @Failure      404  {object}  response.Response
// @Router       /menu/{id} [get]
func (h *MenuHandler) GetMenuItem(c *gin.Context) {
	item, err := h.menuService.GetMenuItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// CreateMenuItem adds a catalog entry
// @Summary      Create menu item
// @Tags         menu
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateMenuItemRequest  true  "Menu item"
// @Success      201      {object}  response.Response{data=service.MenuItemResponse}
// @Failure      400      {object}  response.Response
// @Router       /menu [post]
func (h *MenuHandler) CreateMenuItem(c *gin.Context) {
	var req service.CreateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actor := actorFromSession(c)
	item, err := h.menuService.CreateMenuItem(c.Request.Context(), actor.UserID, req)
	if err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// UpdateMenuItem edits a catalog entry
// @Summary      Update menu item
// @Tags         menu
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Menu item ID"
// @Param        payload  body      service.UpdateMenuItemRequest  true  "Fields to update"
// @Success      200      {object}  response.Response{data=service.MenuItemResponse}
// @Failure      404      {object}  response.Response
// @Router       /menu/{id} [put]
func (h *MenuHandler) UpdateMenuItem(c *gin.Context) {
	var req service.UpdateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actor := actorFromSession(c)
	item, err := h.menuService.UpdateMenuItem(c.Request.Context(), actor.UserID, c.Param("id"), req)
	if err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// DeleteMenuItem soft-deletes a catalog entry
// @Summary      Delete menu item
// @Tags         menu
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Menu item ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /menu/{id} [delete]
func (h *MenuHandler) DeleteMenuItem(c *gin.Context) {
	actor := actorFromSession(c)
	if err := h.menuService.DeleteMenuItem(c.Request.Context(), actor.UserID, c.Param("id")); err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
