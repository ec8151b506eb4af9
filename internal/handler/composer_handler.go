package handler

import (
	"net/http"
	"time"

	"mealportal/internal/middleware"
	"mealportal/internal/model"
	"mealportal/internal/service"
	"mealportal/pkg/response"

	"github.com/gin-gonic/gin"
)

type ComposerHandler struct {
	composerService service.ComposerService
	requestService  service.RequestService
}

func NewComposerHandler(composerService service.ComposerService, requestService service.RequestService) *ComposerHandler {
	return &ComposerHandler{composerService: composerService, requestService: requestService}
}

func (h *ComposerHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyRole := middleware.RequireRole(
		model.SessionRoleAdmin, model.SessionRoleGA,
		model.SessionRoleKitchen, model.SessionRoleStaff,
	)
	composer := router.Group("/api/composer", anyRole)
	{
		composer.GET("/draft", h.GetDraft)
		composer.PUT("/draft", h.SaveDraft)
		composer.DELETE("/draft", h.DeleteDraft)
		composer.POST("/validate", h.ValidateDraft)
		composer.POST("/submit", h.SubmitDraft)
	}
}

func draftOwner(c *gin.Context) string {
	raw, _ := c.Get("userID")
	owner, _ := raw.(string)
	return owner
}

// GetDraft returns the caller's saved composer draft
// @Summary      Load composer draft
// @Tags         composer
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=model.DraftDocument}
// @Failure      404  {object}  response.Response
// @Router       /composer/draft [get]
func (h *ComposerHandler) GetDraft(c *gin.Context) {
	doc, err := h.composerService.LoadDraft(c.Request.Context(), draftOwner(c))
	if err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// SaveDraft persists the caller's in-progress composer state
// @Summary      Save composer draft
// @Tags         composer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      model.DraftDocument  true  "Composer draft"
// @Success      200      {object}  response.Response
// @Router       /composer/draft [put]
func (h *ComposerHandler) SaveDraft(c *gin.Context) {
	var doc model.DraftDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.composerService.SaveDraft(c.Request.Context(), draftOwner(c), doc); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"saved": true}))
}

// DeleteDraft discards the caller's saved draft
// @Summary      Discard composer draft
// @Tags         composer
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /composer/draft [delete]
func (h *ComposerHandler) DeleteDraft(c *gin.Context) {
	if err := h.composerService.DeleteDraft(c.Request.Context(), draftOwner(c)); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// ValidateDraft runs submission validation without submitting
// @Summary      Validate composer draft
// @Description  Returns the structured list of missing fields; never mutates anything
// @Tags         composer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      model.DraftDocument  true  "Composer draft"
// @Success      200      {object}  response.Response
// @Router       /composer/validate [post]
func (h *ComposerHandler) ValidateDraft(c *gin.Context) {
	var doc model.DraftDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if vErr := h.composerService.Validate(doc); vErr != nil {
		c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
			"valid":  false,
			"fields": vErr.Fields,
		}))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"valid": true}))
}

// SubmitDraft flattens the draft and creates the service request
// @Summary      Submit composer draft
// @Description  Validates, flattens entity groups into ordered lines and starts the approval chain
// @Tags         composer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      model.DraftDocument  true  "Composer draft"
// @Success      201      {object}  response.Response{data=service.RequestResponse}
// @Failure      400      {object}  response.Response
// @Router       /composer/submit [post]
func (h *ComposerHandler) SubmitDraft(c *gin.Context) {
	var doc model.DraftDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	payload, err := h.composerService.ToSubmission(doc, time.Now())
	if err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	actor := actorFromSession(c)
	result, err := h.requestService.Create(c.Request.Context(), *payload, actor.UserID)
	if err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	// Successful submission invalidates the stored draft.
	_ = h.composerService.DeleteDraft(c.Request.Context(), draftOwner(c))

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}
