package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ProductsController struct {
	store       ProductStore
	searchLimit int
}

func NewProductsController(store ProductStore, searchLimit int) *ProductsController {
	return &ProductsController{store: store, searchLimit: searchLimit}
}

// ListProducts returns the whole catalog
// GET /api/products
func (pc *ProductsController) ListProducts(c *gin.Context) {
	products, err := pc.store.List(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list products")
		return
	}
	c.JSON(http.StatusOK, products)
}

// SearchProducts returns products whose name contains q, ignoring case
// GET /api/products/search?q=milk&limit=10
func (pc *ProductsController) SearchProducts(c *gin.Context) {
	limit, ok := parseLimitQuery(c, pc.searchLimit)
	if !ok {
		return
	}

	products, err := pc.store.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondInternalError(c, err, "search products")
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct returns a single product
// GET /api/products/:id
func (pc *ProductsController) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := pc.store.GetByID(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "get product")
		return
	}
	if product == nil {
		respondNotFound(c, "product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct returns the id of the product with that exact name,
// creating it when it does not exist yet
// POST /api/products
func (pc *ProductsController) CreateProduct(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	id, err := pc.store.GetOrCreate(c.Request.Context(), req.Name)
	if err != nil {
		respondStoreError(c, err, "create product")
		return
	}
	c.JSON(http.StatusOK, IDResponse{ID: id})
}

// DeleteProduct removes a product and every line item that uses it
// DELETE /api/products/:id
func (pc *ProductsController) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := pc.store.Delete(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "delete product")
		return
	}
	respondSuccess(c, "product deleted")
}
