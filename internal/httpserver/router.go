package httpserver

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(corsOrigins) == 1 && corsOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = corsOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Idempotency-Key")
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	pos := router.Group("/pos")
	{
		pos.GET("/products", listProductsHandler(deps.ProductSvc))
		pos.GET("/products/variants/sku/:sku", variantBySKUHandler(deps.ProductSvc))
		pos.GET("/products/:id", getProductHandler(deps.ProductSvc))
		pos.POST("/orders", createOrderHandler(deps.OrderSvc))
		pos.GET("/orders/:id", getOrderHandler(deps.OrderSvc))
	}

	return router
}
