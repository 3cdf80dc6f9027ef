package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gigledger/internal/api"
	"gigledger/internal/model"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *api.AuthHandler,
	jobHandler *api.JobHandler,
	freelancerHandler *api.FreelancerHandler,
	adminHandler *api.AdminHandler,
	jwtSecret string,
	admin model.Address,
) *Router {
	r := gin.Default()
	r.Use(TraceMiddleware(), MetricsMiddleware())

	// Public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.POST("/freelancers", freelancerHandler.Register)
		auth.GET("/freelancers", freelancerHandler.List)
		auth.GET("/freelancers/:id", freelancerHandler.Detail)

		auth.POST("/jobs", jobHandler.Post)
		auth.GET("/jobs", jobHandler.List)
		auth.GET("/jobs/available", jobHandler.Available)
		auth.GET("/jobs/:id", jobHandler.Detail)
		auth.GET("/jobs/:id/bids", jobHandler.Bids)
		auth.POST("/jobs/:id/bids", jobHandler.Bid)
		auth.POST("/jobs/:id/assign", jobHandler.Assign)
		auth.POST("/jobs/:id/milestones/:n/confirm", jobHandler.ConfirmMilestone)
		auth.POST("/jobs/:id/payment", jobHandler.ReceivePayment)
		auth.POST("/jobs/:id/stake", jobHandler.Stake)
		auth.POST("/jobs/:id/unstake", jobHandler.Unstake)
	}

	// Break-glass
	adm := r.Group("/admin")
	adm.Use(AuthMiddleware(jwtSecret), AdminOnly(admin))
	{
		adm.POST("/emergency-withdraw", adminHandler.EmergencyWithdraw)
		adm.POST("/faucet", adminHandler.Faucet)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
