package product

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	productsvc "github.com/alanyang/product-catalog/internal/service/product"
)

func Register(rg *gin.RouterGroup, svc *productsvc.Service) {
	rg.POST("", createProduct(svc))
	rg.GET("", listProducts(svc))
	rg.GET("/:id", getProduct(svc))
	rg.PUT("/:id", updateProduct(svc))
	rg.DELETE("/:id", deleteProduct(svc))
}

func createProduct(svc *productsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createProductReq
		if err := decodeJSON(c, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		resp, err := svc.Create.Execute(c.Request.Context(), req.toRequest())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, resp.Product)
	}
}

func listProducts(svc *productsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productsvc.GetAllRequest
		if v := c.Query("activeOnly"); v != "" {
			activeOnly, err := strconv.ParseBool(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activeOnly"})
				return
			}
			req.ActiveOnly = activeOnly
		}
		req.Category = c.Query("category")

		resp, err := svc.GetAll.Execute(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": resp.Products, "total": resp.Total})
	}
}

func getProduct(svc *productsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := svc.GetByID.Execute(c.Request.Context(), productsvc.GetByIDRequest{ID: c.Param("id")})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.Product)
	}
}

func updateProduct(svc *productsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateProductReq
		if err := decodeJSON(c, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		resp, err := svc.Update.Execute(c.Request.Context(), req.toRequest(c.Param("id")))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.Product)
	}
}

func deleteProduct(svc *productsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := svc.Delete.Execute(c.Request.Context(), productsvc.DeleteRequest{ID: c.Param("id")})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": resp.Message})
	}
}
