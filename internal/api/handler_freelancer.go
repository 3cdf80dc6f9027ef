package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gigledger/internal/model"
	"gigledger/internal/query"
	"gigledger/internal/service"
)

type FreelancerHandler struct {
	ledgerService *service.LedgerService
	queries       *query.Service
}

func NewFreelancerHandler(ledgerService *service.LedgerService, queries *query.Service) *FreelancerHandler {
	return &FreelancerHandler{
		ledgerService: ledgerService,
		queries:       queries,
	}
}

// Register handles POST /freelancers. The caller address comes from the JWT.
func (h *FreelancerHandler) Register(c *gin.Context) {
	var req struct {
		Name         string   `json:"name" binding:"required"`
		Description  string   `json:"description"`
		Achievements []string `json:"achievements"`
		Skills       string   `json:"skills"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	f, err := h.ledgerService.RegisterFreelancer(c.Request.Context(),
		callerAddress(c), req.Name, req.Description, req.Achievements, req.Skills)
	if err != nil {
		writeLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, f)
}

// List handles GET /freelancers?skip=&limit=
func (h *FreelancerHandler) List(c *gin.Context) {
	skip, limit := pagination(c)
	c.JSON(http.StatusOK, gin.H{"freelancers": h.queries.Freelancers(skip, limit)})
}

// Detail handles GET /freelancers/:id
func (h *FreelancerHandler) Detail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid freelancer id"})
		return
	}

	f, err := h.queries.Freelancer(id)
	if err != nil {
		writeLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, f)
}

func callerAddress(c *gin.Context) model.Address {
	addr, _ := c.Get("address")
	s, _ := addr.(string)
	return model.Address(s)
}

func pagination(c *gin.Context) (int, int) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	return skip, limit
}
