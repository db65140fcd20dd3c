package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mesafiscal/pos-backend/billing"
	"github.com/mesafiscal/pos-backend/models"
	"github.com/mesafiscal/pos-backend/utils"
	"gorm.io/gorm"
)

type ProductController struct {
	DB *gorm.DB
}

func NewProductController(db *gorm.DB) *ProductController {
	return &ProductController{DB: db}
}

// CreateProduct -> registers a product; the price arrives as display
// text and is stored in centavos
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Price       string `json:"price" binding:"required"`
		Description string `json:"description"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	price, err := billing.ParseAmount(req.Price)
	if err != nil || price <= 0 {
		utils.RespondError(c, http.StatusBadRequest, billing.ErrInvalidAmount)
		return
	}

	product := models.Product{
		Name:        req.Name,
		Price:       price,
		Description: req.Description,
		Active:      true,
	}
	if err := pc.DB.Create(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Product created: %s (%s)", product.Name, billing.FormatBRL(product.Price))
	utils.RespondJSON(c, http.StatusCreated, "Product created", product)
}

// GetAllProducts -> active products unless ?all=true
func (pc *ProductController) GetAllProducts(c *gin.Context) {
	var products []models.Product

	query := pc.DB.Order("name")
	if c.Query("all") != "true" {
		query = query.Where("active = ?", true)
	}
	if err := query.Find(&products).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of products", products)
}

// GetProductByID -> detail of one product
func (pc *ProductController) GetProductByID(c *gin.Context) {
	var product models.Product
	if err := pc.DB.First(&product, c.Param("product_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product detail", product)
}

// UpdateProduct -> partial update of name/price/description/active
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	var product models.Product
	if err := pc.DB.First(&product, c.Param("product_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Price       *string `json:"price"`
		Description *string `json:"description"`
		Active      *bool   `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Price != nil {
		price, err := billing.ParseAmount(*req.Price)
		if err != nil || price <= 0 {
			utils.RespondError(c, http.StatusBadRequest, billing.ErrInvalidAmount)
			return
		}
		product.Price = price
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := pc.DB.Save(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Product updated", product)
}
