package handler

import (
	"net/http"
	"strconv"
	"time"

	"mealportal/internal/middleware"
	"mealportal/internal/model"
	"mealportal/internal/repository"
	"mealportal/internal/service"
	"mealportal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RequestHandler struct {
	requestService service.RequestService
}

func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Magic-link endpoints are public: the token itself is the credential.
	approval := router.Group("/api/approval")
	{
		approval.GET("/:token", h.VerifyToken)
		approval.POST("/:token/respond", h.RespondByToken)
		approval.POST("/:token/process", h.ProcessByToken)
	}

	anyRole := middleware.RequireRole(
		model.SessionRoleAdmin, model.SessionRoleGA,
		model.SessionRoleKitchen, model.SessionRoleStaff,
	)
	requests := router.Group("/api/requests")
	{
		requests.POST("", anyRole, h.CreateRequest)
		requests.GET("", anyRole, h.ListRequests)
		requests.GET("/:id", anyRole, h.GetRequest)
		requests.PUT("/:id/approve", middleware.RequireRole(model.SessionRoleAdmin, model.SessionRoleGA), h.Approve)
		requests.PUT("/:id/reject", middleware.RequireRole(model.SessionRoleAdmin, model.SessionRoleGA, model.SessionRoleKitchen), h.Reject)
		requests.PUT("/:id/process", middleware.RequireRole(model.SessionRoleAdmin, model.SessionRoleKitchen), h.Process)
		requests.PUT("/:id/deliver", middleware.RequireRole(model.SessionRoleAdmin, model.SessionRoleKitchen), h.Deliver)
		requests.PUT("/:id/cancel", anyRole, h.Cancel)
	}
}

// actorFromSession builds the acting identity from JWT context values.
func actorFromSession(c *gin.Context) service.Actor {
	actor := service.Actor{}
	if role, ok := c.Get("userRole"); ok {
		actor.SessionRole, _ = role.(string)
	}
	if raw, ok := c.Get("userID"); ok {
		if s, ok := raw.(string); ok {
			if id, err := uuid.Parse(s); err == nil {
				actor.UserID = &id
				actor.Name = s
			}
		}
	}
	return actor
}

// CreateRequest submits a composed request and starts its approval chain
// @Summary      Create service request
// @Description  Persists a flattened submission and issues the first approval magic link
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SubmissionPayload  true  "Submission Payload"
// @Success      201      {object}  response.Response{data=service.RequestResponse}
// @Failure      400      {object}  response.Response
// @Router       /requests [post]
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var payload service.SubmissionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actor := actorFromSession(c)
	result, err := h.requestService.Create(c.Request.Context(), payload, actor.UserID)
	if err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListRequests returns the monitoring snapshot, optionally filtered
// @Summary      List service requests
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        status      query     string  false  "Lifecycle status"
// @Param        type        query     string  false  "Request type"
// @Param        sub_bidang  query     string  false  "Sub-bidang name"
// @Success      200         {object}  response.PagedResponse
// @Router       /requests [get]
func (h *RequestHandler) ListRequests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter := repository.RequestFilter{
		Status:    c.Query("status"),
		Type:      c.Query("type"),
		SubBidang: c.Query("sub_bidang"),
		Page:      page,
		Limit:     limit,
	}
	if from := c.Query("date_from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.DateFrom = &t
		}
	}
	if to := c.Query("date_to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			filter.DateTo = &t
		}
	}

	requests, total, err := h.requestService.Monitoring(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, requests, total, page, limit))
}

// GetRequest returns one request with its order lines and proof state
// @Summary      Get service request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestResponse}
// @Failure      404  {object}  response.Response
// @Router       /requests/{id} [get]
func (h *RequestHandler) GetRequest(c *gin.Context) {
	result, err := h.requestService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// VerifyToken resolves a magic link for the approval landing page
// @Summary      Verify approval token
// @Description  Read-only token check; the token is not consumed
// @Tags         approval
// @Produce      json
// @Param        token  path      string  true  "Approval token"
// @Success      200    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Failure      410    {object}  response.Response
// @Router       /approval/{token} [get]
func (h *RequestHandler) VerifyToken(c *gin.Context) {
	result, role, err := h.requestService.VerifyToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"role":    role,
		"request": result,
	}))
}

// RespondByToken applies approve/reject through a magic link
// @Summary      Respond via approval token
// @Description  Consumes the token and applies the stage decision; replays are rejected
// @Tags         approval
// @Accept       json
// @Produce      json
// @Param        token    path      string              true  "Approval token"
// @Param        payload  body      service.RespondDTO  true  "Decision"
// @Success      200      {object}  response.Response{data=service.RequestResponse}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /approval/{token}/respond [post]
func (h *RequestHandler) RespondByToken(c *gin.Context) {
	var dto service.RespondDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actor := service.Actor{Token: c.Param("token")}
	result, err := h.requestService.Respond(c.Request.Context(), "", actor, dto)
	if err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ProcessByToken starts preparation through the kitchen magic link
// @Summary      Start processing via kitchen token
// @Description  Validates (but keeps) the kitchen token; idempotent once IN_PROGRESS
// @Tags         approval
// @Produce      json
// @Param        token  path      string  true  "Approval token"
// @Success      200    {object}  response.Response{data=service.RequestResponse}
// @Failure      404    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Router       /approval/{token}/process [post]
func (h *RequestHandler) ProcessByToken(c *gin.Context) {
	actor := service.Actor{Token: c.Param("token")}
	result, err := h.requestService.Process(c.Request.Context(), "", actor)
	if err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Approve applies a stage approval from an authenticated session
// @Summary      Approve request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestResponse}
// @Failure      409  {object}  response.Response
// @Router       /requests/{id}/approve [put]
func (h *RequestHandler) Approve(c *gin.Context) {
	h.respond(c, service.RespondDTO{Approved: true})
}

// Reject applies a stage rejection from an authenticated session
// @Summary      Reject request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string              true   "Request ID"
// @Param        payload  body      service.RespondDTO  false  "Rejection note"
// @Success      200      {object}  response.Response{data=service.RequestResponse}
// @Failure      409      {object}  response.Response
// @Router       /requests/{id}/reject [put]
func (h *RequestHandler) Reject(c *gin.Context) {
	var dto service.RespondDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		// Allow empty body; note is optional
		dto = service.RespondDTO{}
	}
	dto.Approved = false
	h.respond(c, dto)
}

func (h *RequestHandler) respond(c *gin.Context, dto service.RespondDTO) {
	actor := actorFromSession(c)
	result, err := h.requestService.Respond(c.Request.Context(), c.Param("id"), actor, dto)
	if err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Process moves a queued request into preparation
// @Summary      Start processing
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestResponse}
// @Failure      409  {object}  response.Response
// @Router       /requests/{id}/process [put]
func (h *RequestHandler) Process(c *gin.Context) {
	actor := actorFromSession(c)
	result, err := h.requestService.Process(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

type deliverDTO struct {
	ProofImage []byte `json:"proof_image"`
	Note       string `json:"note"`
}

// Deliver completes a request with photographic proof
// @Summary      Confirm delivery
// @Description  Requires a captured proof photo; without one the request stays IN_PROGRESS
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string      true  "Request ID"
// @Param        payload  body      deliverDTO  true  "Proof photo (base64)"
// @Success      200      {object}  response.Response{data=service.RequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /requests/{id}/deliver [put]
func (h *RequestHandler) Deliver(c *gin.Context) {
	var dto deliverDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actor := actorFromSession(c)
	result, err := h.requestService.Deliver(c.Request.Context(), c.Param("id"), actor, dto.ProofImage, dto.Note)
	if err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

type cancelDTO struct {
	Note string `json:"note"`
}

// Cancel withdraws a pending request
// @Summary      Cancel request
// @Description  Admins may cancel any pending request; requesters only their own
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string     true   "Request ID"
// @Param        payload  body      cancelDTO  false  "Cancellation note"
// @Success      200      {object}  response.Response{data=service.RequestResponse}
// @Failure      409      {object}  response.Response
// @Router       /requests/{id}/cancel [put]
func (h *RequestHandler) Cancel(c *gin.Context) {
	var dto cancelDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		dto = cancelDTO{}
	}

	actor := actorFromSession(c)
	result, err := h.requestService.Cancel(c.Request.Context(), c.Param("id"), actor, dto.Note)
	if err != nil {
		status := httpStatusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
