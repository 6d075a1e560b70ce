package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/it-hub-api/internal/models"
	"github.com/noah-isme/it-hub-api/internal/service"
	appErrors "github.com/noah-isme/it-hub-api/pkg/errors"
	"github.com/noah-isme/it-hub-api/pkg/response"
)

type requestService interface {
	Submit(ctx context.Context, req service.SubmitRequest) (*models.SummaryRequest, error)
	List(ctx context.Context, newestFirst bool) ([]models.SummaryRequest, error)
}

// RequestHandler serves summary request endpoints.
type RequestHandler struct {
	service requestService
}

// NewRequestHandler constructs a request handler.
func NewRequestHandler(svc requestService) *RequestHandler {
	return &RequestHandler{service: svc}
}

// Submit godoc
// @Summary Ask for a subject summary
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body service.SubmitRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Submit(c *gin.Context) {
	var req service.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// List godoc
// @Summary List summary requests
// @Tags Admin
// @Produce json
// @Param order query string false "newest (default) or oldest"
// @Param page query int false "Page"
// @Param limit query int false "Page size (all items when omitted)"
// @Success 200 {object} response.Envelope
// @Router /admin/requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	order := strings.ToLower(c.DefaultQuery("order", "newest"))
	if order != "newest" && order != "oldest" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "order must be newest or oldest"))
		return
	}
	requests, err := h.service.List(c.Request.Context(), order == "newest")
	if err != nil {
		response.Error(c, err)
		return
	}
	page, pagination, err := paginate(c, requests)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page, pagination, map[string]interface{}{"order": order})
}
