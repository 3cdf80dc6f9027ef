package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"gigledger/internal/ledger"
	"gigledger/internal/registry"
)

func TestWriteLedgerError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err  error
		want int
	}{
		{ledger.ErrInvalidAddress, http.StatusBadRequest},
		{ledger.ErrInvalidAmount, http.StatusBadRequest},
		{ledger.ErrInvalidMilestone, http.StatusBadRequest},
		{registry.ErrInvalidAddress, http.StatusBadRequest},
		{ledger.ErrUnauthorized, http.StatusForbidden},
		{ledger.ErrJobNotFound, http.StatusNotFound},
		{ledger.ErrFreelancerNotFound, http.StatusNotFound},
		{registry.ErrNotFound, http.StatusNotFound},
		{ledger.ErrJobAlreadyAssigned, http.StatusConflict},
		{ledger.ErrAlreadyRegistered, http.StatusConflict},
		{ledger.ErrNotBid, http.StatusConflict},
		{registry.ErrAlreadyRegistered, http.StatusConflict},
		{ledger.ErrJobNotActive, http.StatusUnprocessableEntity},
		{ledger.ErrNoFundsAvailable, http.StatusUnprocessableEntity},
		{errors.New("database on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			writeLedgerError(c, tc.err)
			require.Equal(t, tc.want, w.Code)
		})
	}
}

func TestWriteLedgerErrorHidesInternals(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	writeLedgerError(c, errors.New("pq: connection refused at 10.0.0.3"))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "10.0.0.3")
}
