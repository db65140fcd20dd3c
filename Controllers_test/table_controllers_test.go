package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/mesafiscal/pos-backend/controllers"
	"github.com/mesafiscal/pos-backend/models"
	"github.com/mesafiscal/pos-backend/utils"
)

func setupTestDBForTables() *gorm.DB {
	db := openTestDB()
	if err := db.AutoMigrate(&models.Table{}); err != nil {
		panic(err)
	}
	return db
}

func setupTableRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	tc := controllers.NewTableController(db)
	router.POST("/tables", tc.CreateTable)
	router.GET("/tables", tc.GetAllTables)
	router.GET("/tables/:table_id", tc.GetTableByID)
	router.PATCH("/tables/:table_id/status", tc.UpdateTableStatus)
	router.PATCH("/tables/:table_id/clean", tc.MarkTableClean)
	return router
}

func TestCreateAndGetTable(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables()
	router := setupTableRouter(db)

	w := doJSON(t, router, "POST", "/tables", map[string]interface{}{
		"table_number": "M10",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "M10", data["table_number"])
	assert.Equal(t, "available", data["status"])

	w = doJSON(t, router, "GET", "/tables/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTableCleaningFlow(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables()
	router := setupTableRouter(db)

	table := models.Table{TableNumber: "M11", Status: "dirty"}
	db.Create(&table)

	w := doJSON(t, router, "PATCH", "/tables/1/clean", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "available", data["status"])

	// A table that is not dirty cannot be marked clean.
	w = doJSON(t, router, "PATCH", "/tables/1/clean", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTableStatusValidation(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables()
	router := setupTableRouter(db)

	table := models.Table{TableNumber: "M12", Status: "available"}
	db.Create(&table)

	w := doJSON(t, router, "PATCH", "/tables/1/status", map[string]interface{}{
		"status": "occupied",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "PATCH", "/tables/1/status", map[string]interface{}{
		"status": "flooded",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
