package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scanera/product-service/internal/database"
)

// GetProduct returns a handler serving one product by barcode.
// GET /products/:barcode
func GetProduct(products ProductGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		barcode := c.Param("barcode")
		if barcode == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "barcode is required"})
			return
		}

		product, err := products.GetByBarcode(c.Request.Context(), barcode)
		if errors.Is(err, database.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "product not found",
				"barcode": barcode,
			})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch product"})
			return
		}

		c.JSON(http.StatusOK, product)
	}
}
