package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"posterminal/internal/domain"
	ordersvc "posterminal/internal/service/order"
)

// Deps bundles the services the router needs.
type Deps struct {
	ProductSvc ProductService
	OrderSvc   OrderService
}

type ProductService interface {
	List(ctx context.Context, limit, offset int) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	GetVariantBySKU(ctx context.Context, sku string) (*domain.Variant, *domain.Product, error)
}

type OrderService interface {
	Create(ctx context.Context, in ordersvc.CreateInput) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
}

func listProductsHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		products, err := svc.List(c.Request.Context(), limit, offset)
		if err != nil {
			renderError(c, err)
			return
		}
		if products == nil {
			products = []domain.Product{}
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

func getProductHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"product": product})
	}
}

func variantBySKUHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		variant, product, err := svc.GetVariantBySKU(c.Request.Context(), c.Param("sku"))
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"variant": variant, "product": product})
	}
}

func createOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in ordersvc.CreateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		in.IdempotencyKey = c.GetHeader("Idempotency-Key")

		order, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"order": order})
	}
}

func getOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// renderError maps service errors onto the wire: not-found to 404, stock
// conflicts to 409 with the figures in the message, validation to 400, and
// everything else to an opaque 500.
func renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case domain.IsStockExceeded(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		var ve *ordersvc.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
