package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gigledger/internal/ledger"
	"gigledger/internal/registry"
)

// writeLedgerError maps the ledger/registry error taxonomy onto HTTP status
// codes. Unknown errors become 500 without leaking internals.
func writeLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidAddress),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidMilestone),
		errors.Is(err, registry.ErrInvalidAddress):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrJobNotFound),
		errors.Is(err, ledger.ErrFreelancerNotFound),
		errors.Is(err, registry.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrJobAlreadyAssigned),
		errors.Is(err, ledger.ErrAlreadyRegistered),
		errors.Is(err, ledger.ErrNotBid),
		errors.Is(err, registry.ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrJobNotActive),
		errors.Is(err, ledger.ErrNoFundsAvailable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}
