package handlers

import (
	"fmt"
	"strconv"

	"github.com/crewdeck/backend/internal/middleware"
	"github.com/crewdeck/backend/internal/services"
	"github.com/crewdeck/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	customerService *services.CustomerService
	importPath      string
}

func NewCustomerHandler(customerService *services.CustomerService, importPath string) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		importPath:      importPath,
	}
}

// List returns the customer directory
// GET /api/customers
func (h *CustomerHandler) List(c *gin.Context) {
	customers, err := h.customerService.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, customers)
}

// Get returns one customer with its projects
// GET /api/customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid customer id")
		return
	}

	customer, err := h.customerService.GetByID(uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, customer)
}

// Search looks customers up by name, phone or email
// GET /api/customers/search?q=
func (h *CustomerHandler) Search(c *gin.Context) {
	customers, err := h.customerService.Search(c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, customers)
}

// ImportUpload reconciles an uploaded customer CSV
// POST /api/customers/import
func (h *CustomerHandler) ImportUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "csv file is required")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.BadRequest(c, "cannot read uploaded file")
		return
	}
	defer f.Close()

	result, err := h.customerService.ImportCSV(f)
	if err != nil {
		response.Error(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	services.LogInfo("customer", "import",
		fmt.Sprintf("imported %d, updated %d from upload %s", result.Imported, result.Updated, file.Filename),
		&userID, c.ClientIP(), c.Request.UserAgent(), result)

	response.Success(c, result)
}

// ImportFromServer reconciles the configured server-local customer CSV
// POST /api/customers/import-file
func (h *CustomerHandler) ImportFromServer(c *gin.Context) {
	result, err := h.customerService.ImportFromFile(h.importPath)
	if err != nil {
		response.Error(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	services.LogInfo("customer", "import",
		fmt.Sprintf("imported %d, updated %d from %s", result.Imported, result.Updated, h.importPath),
		&userID, c.ClientIP(), c.Request.UserAgent(), result)

	response.Success(c, result)
}
