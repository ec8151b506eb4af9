package handler

import (
	"net/http"

	"mealportal/internal/middleware"
	"mealportal/internal/model"
	"mealportal/internal/service"
	"mealportal/pkg/pagination"
	"mealportal/pkg/response"

	"github.com/gin-gonic/gin"
)

type DirectoryHandler struct {
	directoryService service.DirectoryService
}

func NewDirectoryHandler(directoryService service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService}
}

func (h *DirectoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyRole := middleware.RequireRole(
		model.SessionRoleAdmin, model.SessionRoleGA,
		model.SessionRoleKitchen, model.SessionRoleStaff,
	)
	adminOnly := middleware.RequireRole(model.SessionRoleAdmin, model.SessionRoleGA)

	subBidang := router.Group("/api/sub-bidang")
	{
		subBidang.GET("", anyRole, h.ListSubBidang)
		subBidang.GET("/supervisor", anyRole, h.ResolveSupervisor)
		subBidang.POST("", adminOnly, h.CreateSubBidang)
		subBidang.PUT("/:id", adminOnly, h.UpdateSubBidang)
		subBidang.DELETE("/:id", adminOnly, h.DeleteSubBidang)
	}

	employees := router.Group("/api/employees")
	{
		employees.GET("", anyRole, h.ListEmployees)
		employees.POST("", adminOnly, h.CreateEmployee)
		employees.PUT("/:id", adminOnly, h.UpdateEmployee)
		employees.DELETE("/:id", adminOnly, h.DeleteEmployee)
	}
}

// ListSubBidang returns the organizational units
// @Summary      List sub-bidang
// @Tags         directory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.PagedResponse
// @Router       /sub-bidang [get]
func (h *DirectoryHandler) ListSubBidang(c *gin.Context) {
	params := pagination.Parse(c)
	units, total, err := h.directoryService.ListSubBidang(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, units, total, params.Page, params.Limit))
}

// ResolveSupervisor returns the approving supervisor for a unit
// @Summary      Resolve supervisor
// @Description  Prefills the composer's approval banner for a sub-bidang
// @Tags         directory
// @Produce      json
// @Security     BearerAuth
// @Param        name  query     string  true  "Sub-bidang name"
// @Success      200   {object}  response.Response{data=service.SupervisorResponse}
// @Failure      404   {object}  response.Response
// @Router       /sub-bidang/supervisor [get]
func (h *DirectoryHandler) ResolveSupervisor(c *gin.Context) {
	sup, err := h.directoryService.ResolveSupervisor(c.Request.Context(), c.Query("name"))
	if err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sup))
}

// CreateSubBidang adds an organizational unit
// @Summary      Create sub-bidang
// @Tags         directory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateSubBidangRequest  true  "Sub-bidang"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /sub-bidang [post]
func (h *DirectoryHandler) CreateSubBidang(c *gin.Context) {
	var req service.CreateSubBidangRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	sb, err := h.directoryService.CreateSubBidang(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, sb))
}

// UpdateSubBidang edits an organizational unit
// @Summary      Update sub-bidang
// @Tags         directory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Sub-bidang ID"
// @Param        payload  body      service.UpdateSubBidangRequest  true  "Fields to update"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /sub-bidang/{id} [put]
func (h *DirectoryHandler) UpdateSubBidang(c *gin.Context) {
	var req service.UpdateSubBidangRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	sb, err := h.directoryService.UpdateSubBidang(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sb))
}

// DeleteSubBidang removes an organizational unit
// @Summary      Delete sub-bidang
// @Tags         directory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sub-bidang ID"
// @Success      200  {object}  response.Response
// @Router       /sub-bidang/{id} [delete]
func (h *DirectoryHandler) DeleteSubBidang(c *gin.Context) {
	if err := h.directoryService.DeleteSubBidang(c.Request.Context(), c.Param("id")); err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// ListEmployees returns directory entries, filterable by entity and unit
// @Summary      List employees
// @Tags         directory
// @Produce      json
// @Security     BearerAuth
// @Param        entity      query     string  false  "Entity category"
// @Param        sub_bidang  query     string  false  "Sub-bidang name"
// @Success      200         {object}  response.PagedResponse
// @Router       /employees [get]
func (h *DirectoryHandler) ListEmployees(c *gin.Context) {
	params := pagination.Parse(c)
	employees, total, err := h.directoryService.ListEmployees(
		c.Request.Context(), c.Query("entity"), c.Query("sub_bidang"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, employees, total, params.Page, params.Limit))
}

// CreateEmployee adds a directory entry
// @Summary      Create employee
// @Tags         directory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateEmployeeRequest  true  "Employee"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /employees [post]
func (h *DirectoryHandler) CreateEmployee(c *gin.Context) {
	var req service.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	emp, err := h.directoryService.CreateEmployee(c.Request.Context(), req)
	if err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, emp))
}

// UpdateEmployee edits a directory entry
// @Summary      Update employee
// @Tags         directory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Employee ID"
// @Param        payload  body      service.UpdateEmployeeRequest  true  "Fields to update"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /employees/{id} [put]
func (h *DirectoryHandler) UpdateEmployee(c *gin.Context) {
	var req service.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	emp, err := h.directoryService.UpdateEmployee(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, emp))
}

// DeleteEmployee removes a directory entry
// @Summary      Delete employee
// @Tags         directory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Employee ID"
// @Success      200  {object}  response.Response
// @Router       /employees/{id} [delete]
func (h *DirectoryHandler) DeleteEmployee(c *gin.Context) {
	if err := h.directoryService.DeleteEmployee(c.Request.Context(), c.Param("id")); err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
