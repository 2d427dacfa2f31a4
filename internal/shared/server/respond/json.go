package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the success body shared by every JSON endpoint.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       any         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// JSON writes payload as-is with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// Data writes {"success":true,"data":data}.
func Data(c *gin.Context, status int, data any) {
	JSON(c, status, Envelope{Success: true, Data: data})
}

// OK is Data with 200.
func OK(c *gin.Context, data any) {
	Data(c, http.StatusOK, data)
}

// Message is OK with a human-readable message next to the data.
func Message(c *gin.Context, message string, data any) {
	JSON(c, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Page writes a listing page with its pagination block.
func Page(c *gin.Context, items any, p Pagination) {
	JSON(c, http.StatusOK, Envelope{Success: true, Data: items, Pagination: &p})
}
