package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gigledger/internal/model"
	"gigledger/internal/query"
	"gigledger/internal/service"
)

type JobHandler struct {
	ledgerService *service.LedgerService
	queries       *query.Service
}

func NewJobHandler(ledgerService *service.LedgerService, queries *query.Service) *JobHandler {
	return &JobHandler{
		ledgerService: ledgerService,
		queries:       queries,
	}
}

// Post handles POST /jobs. Funds are pulled into custody synchronously; a
// failed pull (or vault forward) creates no job.
func (h *JobHandler) Post(c *gin.Context) {
	var req struct {
		Amount         uint64 `json:"amount" binding:"required"`
		Asset          string `json:"asset" binding:"required"`
		MilestoneCount uint32 `json:"milestone_count" binding:"required"`
		Description    string `json:"description"`
		Stake          bool   `json:"stake"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	job, err := h.ledgerService.PostJob(c.Request.Context(),
		callerAddress(c), req.Amount, model.Address(req.Asset),
		req.MilestoneCount, req.Description, req.Stake)
	if err != nil {
		writeLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// Bid handles POST /jobs/:id/bids
func (h *JobHandler) Bid(c *gin.Context) {
	jobID, ok := jobParam(c)
	if !ok {
		return
	}

	var req struct {
		Amount uint64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.ledgerService.Bid(c.Request.Context(), callerAddress(c), jobID, req.Amount); err != nil {
		writeLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job_id": jobID, "status": "bid placed"})
}

// Assign handles POST /jobs/:id/assign
func (h *JobHandler) Assign(c *gin.Context) {
	jobID, ok := jobParam(c)
	if !ok {
		return
	}

	var req struct {
		Freelancer string `json:"freelancer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	job, err := h.ledgerService.Assign(c.Request.Context(),
		callerAddress(c), jobID, model.Address(req.Freelancer))
	if err != nil {
		writeLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ConfirmMilestone handles POST /jobs/:id/milestones/:n/confirm
func (h *JobHandler) ConfirmMilestone(c *gin.Context) {
	jobID, ok := jobParam(c)
	if !ok {
		return
	}
	n, err := strconv.ParseUint(c.Param("n"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid milestone number"})
		return
	}

	job, confirmErr := h.ledgerService.ConfirmMilestone(c.Request.Context(),
		callerAddress(c), jobID, uint32(n))
	if confirmErr != nil {
		writeLedgerError(c, confirmErr)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ReceivePayment handles POST /jobs/:id/payment
func (h *JobHandler) ReceivePayment(c *gin.Context) {
	jobID, ok := jobParam(c)
	if !ok {
		return
	}

	amount, err := h.ledgerService.ReceivePayment(c.Request.Context(), callerAddress(c), jobID)
	if err != nil {
		writeLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job_id": jobID, "amount": amount})
}

// Stake handles POST /jobs/:id/stake
func (h *JobHandler) Stake(c *gin.Context) {
	jobID, ok := jobParam(c)
	if !ok {
		return
	}

	job, err := h.ledgerService.StakePayment(c.Request.Context(), callerAddress(c), jobID)
	if err != nil {
		writeLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// Unstake handles POST /jobs/:id/unstake. Unstaking pays the freelancer in
// the same call.
func (h *JobHandler) Unstake(c *gin.Context) {
	jobID, ok := jobParam(c)
	if !ok {
		return
	}

	amount, err := h.ledgerService.UnstakePayment(c.Request.Context(), callerAddress(c), jobID)
	if err != nil {
		writeLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job_id": jobID, "amount": amount})
}

// List handles GET /jobs?skip=&limit=
func (h *JobHandler) List(c *gin.Context) {
	skip, limit := pagination(c)
	c.JSON(http.StatusOK, gin.H{"jobs": h.queries.Jobs(skip, limit)})
}

// Available handles GET /jobs/available?limit=
func (h *JobHandler) Available(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	c.JSON(http.StatusOK, gin.H{"jobs": h.queries.AvailableJobs(limit)})
}

// Detail handles GET /jobs/:id
func (h *JobHandler) Detail(c *gin.Context) {
	jobID, ok := jobParam(c)
	if !ok {
		return
	}

	job, err := h.queries.Job(jobID)
	if err != nil {
		writeLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// Bids handles GET /jobs/:id/bids
func (h *JobHandler) Bids(c *gin.Context) {
	jobID, ok := jobParam(c)
	if !ok {
		return
	}

	bids, err := h.queries.Bids(jobID)
	if err != nil {
		writeLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job_id": jobID, "bids": bids})
}

func jobParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return 0, false
	}
	return id, true
}
