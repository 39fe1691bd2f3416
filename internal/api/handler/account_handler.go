package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leadstream-dev/go-leadstream/internal/api/service"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
)

type connectAccountRequest struct {
	Phone string `json:"phone" binding:"required"`
}

type verifyAccountRequest struct {
	AccountID int64  `json:"account_id" binding:"required"`
	Code      string `json:"code" binding:"required"`
}

type AccountHandler struct {
	accountService *service.AccountService
	logger         *slog.Logger
}

func NewAccountHandler(accountService *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

func (h *AccountHandler) Register(group *gin.RouterGroup) {
	group.POST("/telegram/accounts/start-auth", h.Connect)
	group.POST("/telegram/accounts/verify-code", h.Verify)
	group.GET("/telegram/accounts", h.List)
	group.GET("/telegram/accounts/:id", h.Get)
	group.GET("/telegram/accounts/:id/dialogs", h.Dialogs)
	group.DELETE("/telegram/accounts/:id", h.Delete)
}

func (h *AccountHandler) Connect(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var req connectAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса", "details": err.Error()})
		return
	}

	account, err := h.accountService.ConnectAccount(c.Request.Context(), tenant, req.Phone)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, toAccountResponse(account))
}

func (h *AccountHandler) Verify(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var req verifyAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса", "details": err.Error()})
		return
	}

	account, err := h.accountService.VerifyAccount(c.Request.Context(), tenant, req.AccountID, req.Code)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toAccountResponse(account))
}

func (h *AccountHandler) Get(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	account, err := h.accountService.GetAccount(c.Request.Context(), tenant, id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toAccountResponse(account))
}

func (h *AccountHandler) List(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), tenant)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	items := make([]accountResponse, 0, len(accounts))
	for _, account := range accounts {
		items = append(items, toAccountResponse(account))
	}

	c.JSON(http.StatusOK, gin.H{"accounts": items, "count": len(items)})
}

func (h *AccountHandler) Dialogs(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	dialogs, err := h.accountService.GetDialogs(c.Request.Context(), tenant, id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dialogs": dialogs, "count": len(dialogs)})
}

func (h *AccountHandler) Delete(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), tenant, id); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type accountResponse struct {
	ID        int64  `json:"id"`
	Phone     string `json:"phone"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func toAccountResponse(account *models.TelegramAccount) accountResponse {
	return accountResponse{
		ID:        account.ID,
		Phone:     account.Phone,
		Status:    string(account.Status),
		CreatedAt: account.CreatedAt.Format(timeFormat),
	}
}
