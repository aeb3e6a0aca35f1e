package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zapimob/zapimob/internal/pkg/response"
	accountSvc "github.com/zapimob/zapimob/internal/service/account"
)

// AccountHandler administra as credenciais das contas comerciais da Meta.
// Os tokens nunca voltam nas respostas.
type AccountHandler struct {
	service *accountSvc.Service
}

func NewAccountHandler(service *accountSvc.Service) *AccountHandler {
	return &AccountHandler{service: service}
}

func (h *AccountHandler) Register(r *gin.RouterGroup) {
	r.GET("/accounts", h.list)
	r.PUT("/accounts", h.upsert)
}

func (h *AccountHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

type upsertAccountRequest struct {
	Platform    string `json:"platform" binding:"required"`
	ExternalID  string `json:"externalId" binding:"required"`
	Name        string `json:"name"`
	AccessToken string `json:"accessToken"`
	Active      bool   `json:"active"`
}

func (h *AccountHandler) upsert(c *gin.Context) {
	var req upsertAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err)
		return
	}
	acct, err := h.service.Upsert(c.Request.Context(), accountSvc.Input{
		Platform:    req.Platform,
		ExternalID:  req.ExternalID,
		Name:        req.Name,
		AccessToken: req.AccessToken,
		Active:      req.Active,
	})
	if err != nil {
		if errors.Is(err, accountSvc.ErrInvalidPlatform) {
			response.Error(c, http.StatusBadRequest, err)
			return
		}
		response.Error(c, http.StatusInternalServerError, err)
		return
	}
	response.Success(c, http.StatusOK, acct)
}
