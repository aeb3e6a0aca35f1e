package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zapimob/zapimob/internal/pkg/response"
	inboxSvc "github.com/zapimob/zapimob/internal/service/inbox"
	"github.com/zapimob/zapimob/internal/storage"
	"github.com/zapimob/zapimob/internal/storage/model"
)

// InboxHandler expõe leitura de leads, conversas e notificações para o painel.
type InboxHandler struct {
	service *inboxSvc.Service
}

func NewInboxHandler(service *inboxSvc.Service) *InboxHandler {
	return &InboxHandler{service: service}
}

func (h *InboxHandler) Register(r *gin.RouterGroup) {
	r.GET("/leads", h.listLeads)
	r.POST("/leads", h.createLead)
	r.GET("/leads/:id", h.getLead)
	r.GET("/conversations", h.listConversations)
	r.GET("/conversations/:id", h.getConversation)
	r.GET("/conversations/:id/messages", h.listMessages)
	r.GET("/notifications", h.listNotifications)
}

func (h *InboxHandler) listLeads(c *gin.Context) {
	leads, err := h.service.ListLeads(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err)
		return
	}
	response.Success(c, http.StatusOK, leads)
}

type createLeadRequest struct {
	Name     string  `json:"name" binding:"required"`
	Phone    string  `json:"phone" binding:"required"`
	Email    string  `json:"email"`
	Source   string  `json:"source"`
	Status   string  `json:"status"`
	Priority string  `json:"priority"`
	Budget   float64 `json:"budget"`
}

func (h *InboxHandler) createLead(c *gin.Context) {
	var req createLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err)
		return
	}
	lead, err := h.service.CreateLead(c.Request.Context(), model.Lead{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Source:   req.Source,
		Status:   req.Status,
		Priority: req.Priority,
		Budget:   req.Budget,
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err)
		return
	}
	response.Success(c, http.StatusCreated, lead)
}

func (h *InboxHandler) getLead(c *gin.Context) {
	lead, err := h.service.GetLead(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.Error(c, http.StatusNotFound, err)
			return
		}
		response.Error(c, http.StatusInternalServerError, err)
		return
	}
	response.Success(c, http.StatusOK, lead)
}

func (h *InboxHandler) listConversations(c *gin.Context) {
	convs, err := h.service.ListConversations(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err)
		return
	}
	response.Success(c, http.StatusOK, convs)
}

func (h *InboxHandler) getConversation(c *gin.Context) {
	conv, err := h.service.GetConversation(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.Error(c, http.StatusNotFound, err)
			return
		}
		response.Error(c, http.StatusInternalServerError, err)
		return
	}
	response.Success(c, http.StatusOK, conv)
}

func (h *InboxHandler) listMessages(c *gin.Context) {
	msgs, err := h.service.ListMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.Error(c, http.StatusNotFound, err)
			return
		}
		response.Error(c, http.StatusInternalServerError, err)
		return
	}
	response.Success(c, http.StatusOK, msgs)
}

func (h *InboxHandler) listNotifications(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		response.ErrorWithMessage(c, http.StatusUnauthorized, "usuário não identificado")
		return
	}
	list, err := h.service.ListNotifications(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}
