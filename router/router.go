package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mesafiscal/pos-backend/controllers"
	"github.com/mesafiscal/pos-backend/middlewares"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())

	rateLimiter := middlewares.NewRateLimiter(50, 1)
	r.Use(rateLimiter.RateLimit())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db)
	productCtrl := controllers.NewProductController(db)
	orderCtrl := controllers.NewOrderController(db)
	settlementCtrl := controllers.NewSettlementController(db)

	auth := r.Group("/auth")
	auth.Use(middlewares.StrictRateLimiter())
	{
		auth.POST("/register", userCtrl.Register)
		auth.POST("/login", userCtrl.Login)
	}

	api := r.Group("/")
	api.Use(middlewares.AuthMiddleware())
	{
		api.GET("/profile", userCtrl.GetProfile)
		api.GET("/events/ws", controllers.EventsSocket)

		tables := api.Group("/tables")
		{
			tables.POST("", tableCtrl.CreateTable)
			tables.GET("", tableCtrl.GetAllTables)
			tables.GET("/by-status", tableCtrl.FindTablesByStatus)
			tables.GET("/:table_id", tableCtrl.GetTableByID)
			tables.PATCH("/:table_id/status", tableCtrl.UpdateTableStatus)
			tables.PATCH("/:table_id/clean", tableCtrl.MarkTableClean)
			tables.DELETE("/:table_id", tableCtrl.DeleteTable)

			// Bill settlement flow for one table
			settlement := tables.Group("/:table_id/settlement")
			{
				settlement.POST("", settlementCtrl.OpenSettlement)
				settlement.GET("", settlementCtrl.GetSettlement)
				settlement.POST("/reopen", settlementCtrl.ReopenSettlement)
				settlement.POST("/orders/:order_id/toggle", settlementCtrl.ToggleOrder)
				settlement.POST("/adjustment", settlementCtrl.ApplyAdjustment)
				settlement.DELETE("/adjustment", settlementCtrl.RemoveAdjustment)
				settlement.POST("/payments", settlementCtrl.AddPayment)
				settlement.DELETE("/payments/:payment_id", settlementCtrl.RemovePayment)
				settlement.POST("/finalize", settlementCtrl.FinalizeSettlement)
				settlement.DELETE("", settlementCtrl.AbandonSettlement)
			}
		}

		products := api.Group("/products")
		{
			products.POST("", productCtrl.CreateProduct)
			products.GET("", productCtrl.GetAllProducts)
			products.GET("/:product_id", productCtrl.GetProductByID)
			products.PATCH("/:product_id", productCtrl.UpdateProduct)
		}

		orders := api.Group("/orders")
		{
			orders.POST("", orderCtrl.CreateOrder)
			orders.GET("", orderCtrl.GetAllOrders)
			orders.GET("/:order_id", orderCtrl.GetOrderByID)
			orders.PATCH("/:order_id/cancel", orderCtrl.CancelOrder)
		}

		settlements := api.Group("/settlements")
		{
			settlements.GET("", settlementCtrl.ListSettlements)
			settlements.GET("/:id", settlementCtrl.GetSettlementByID)
		}
	}

	return r
}
