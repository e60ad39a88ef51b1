package delivery

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const uploadField = "file"

// readUpload loads the whole multipart file into memory. It writes a 400 and
// returns ok=false when the request carries no file.
func readUpload(c *gin.Context) (filename string, content []byte, ok bool) {
	header, err := c.FormFile(uploadField)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "No file uploaded. Send the CSV in the 'file' form field.")
		return "", nil, false
	}

	f, err := header.Open()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, fmt.Sprintf("Error processing file: %v", err))
		return "", nil, false
	}
	defer f.Close()

	content, err = io.ReadAll(f)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, fmt.Sprintf("Error processing file: %v", err))
		return "", nil, false
	}
	return header.Filename, content, true
}

type CategoryImportResponse struct {
	Message string   `json:"message"`
	Added   int      `json:"added"`
	Errors  []string `json:"errors"`
}

type ProductImportResponse struct {
	Message       string   `json:"message"`
	ProductsAdded int      `json:"products_added"`
	Errors        []string `json:"errors"`
}

type SaleImportResponse struct {
	Message    string   `json:"message"`
	TotalAdded int      `json:"total_added"`
	Errors     []string `json:"errors"`
}
