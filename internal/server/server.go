package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/tavola/pos-api/config"
	"github.com/tavola/pos-api/internal/handlers"
	"github.com/tavola/pos-api/internal/middleware"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	posCfg, err := config.LoadPosConfig()
	if err != nil {
		return fmt.Errorf("failed to load POS config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	apiKeyHash, err := bcrypt.GenerateFromPassword([]byte(posCfg.APIKey), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash API key: %v", err)
	}

	r := gin.Default()

	setupRoutes(r, db, posCfg, apiKeyHash)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB, posCfg *config.PosConfig, apiKeyHash []byte) {
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.PosConfigMiddleware(posCfg))
	r.Use(middleware.RateLimitMiddleware(rate.Limit(50), 100))

	public := r.Group("/v1")
	{
		public.GET("/health", handlers.Health)
		public.GET("/capabilities", handlers.GetCapabilities)
	}

	protected := r.Group("/v1")
	protected.Use(middleware.APIKeyMiddleware(apiKeyHash))
	{
		tables := protected.Group("/tables")
		{
			tables.GET("", handlers.ListTables)
			tables.POST("", handlers.CreateTable)
		}

		tickets := protected.Group("/tickets")
		{
			tickets.POST("", handlers.CreateTicket)
			tickets.GET("", handlers.ListTickets)
			tickets.GET("/:id", handlers.GetTicket)
			tickets.POST("/:id/close", handlers.CloseTicket)
			tickets.GET("/:id/items", handlers.ListTicketItems)
			tickets.POST("/:id/items", handlers.AddTicketItems)
			tickets.GET("/:id/receipt", handlers.GetTicketReceipt)
		}

		payments := protected.Group("/payments")
		{
			payments.POST("", handlers.SubmitPayment)
			payments.GET("", handlers.ListPayments)
		}

		protected.POST("/receipts/verify", handlers.VerifyReceipt)
	}
}
