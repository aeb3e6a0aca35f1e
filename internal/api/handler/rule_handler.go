package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zapimob/zapimob/internal/pkg/response"
	ruleSvc "github.com/zapimob/zapimob/internal/service/rule"
	"github.com/zapimob/zapimob/internal/storage"
)

type RuleHandler struct {
	service *ruleSvc.Service
}

func NewRuleHandler(service *ruleSvc.Service) *RuleHandler {
	return &RuleHandler{service: service}
}

func (h *RuleHandler) Register(r *gin.RouterGroup) {
	r.GET("/rules", h.list)
	r.POST("/rules", h.create)
	r.GET("/rules/:id", h.get)
	r.PUT("/rules/:id", h.update)
	r.DELETE("/rules/:id", h.delete)
}

func (h *RuleHandler) list(c *gin.Context) {
	rules, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err)
		return
	}
	response.Success(c, http.StatusOK, rules)
}

func (h *RuleHandler) create(c *gin.Context) {
	var in ruleSvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, err)
		return
	}
	rule, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		response.Error(c, statusFor(err), err)
		return
	}
	response.Success(c, http.StatusCreated, rule)
}

func (h *RuleHandler) get(c *gin.Context) {
	rule, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, statusFor(err), err)
		return
	}
	response.Success(c, http.StatusOK, rule)
}

func (h *RuleHandler) update(c *gin.Context) {
	var in ruleSvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, err)
		return
	}
	rule, err := h.service.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		response.Error(c, statusFor(err), err)
		return
	}
	response.Success(c, http.StatusOK, rule)
}

func (h *RuleHandler) delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, statusFor(err), err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ruleSvc.ErrEmptyKeyword),
		errors.Is(err, ruleSvc.ErrInvalidPlatform),
		errors.Is(err, ruleSvc.ErrMissingResponse),
		errors.Is(err, ruleSvc.ErrMissingAssistant):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
