package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gigledger/internal/asset"
	"gigledger/internal/model"
	"gigledger/internal/service"
)

type AdminHandler struct {
	ledgerService *service.LedgerService
	// token is non-nil only in memory-token mode; the faucet is a dev
	// convenience, not a ledger operation.
	token *asset.MemoryToken
}

func NewAdminHandler(ledgerService *service.LedgerService, token *asset.MemoryToken) *AdminHandler {
	return &AdminHandler{
		ledgerService: ledgerService,
		token:         token,
	}
}

// EmergencyWithdraw handles POST /admin/emergency-withdraw. The ledger
// itself rejects callers other than the configured administrator.
func (h *AdminHandler) EmergencyWithdraw(c *gin.Context) {
	var req struct {
		Asset string `json:"asset" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	amount, err := h.ledgerService.EmergencyWithdraw(c.Request.Context(),
		callerAddress(c), model.Address(req.Asset))
	if err != nil {
		writeLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"asset": req.Asset, "amount": amount})
}

// Faucet handles POST /admin/faucet: mints memory-token units for seeding.
func (h *AdminHandler) Faucet(c *gin.Context) {
	if h.token == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "faucet unavailable: external asset registry in use"})
		return
	}

	var req struct {
		Asset  string `json:"asset" binding:"required"`
		Holder string `json:"holder" binding:"required"`
		Amount uint64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	h.token.Mint(model.Address(req.Asset), model.Address(req.Holder), req.Amount)
	c.JSON(http.StatusOK, gin.H{"status": "minted"})
}
