package handlers

import (
	"errors"
	"net/http"

	"github.com/01moynul/inkframe-golang/internal/uploads"
	"github.com/gin-gonic/gin"
)

// UploadImage handles POST /api/admin/uploads
// The image is sniffed, stored under a random name and its public URL returned.
func (h *Handlers) UploadImage(c *gin.Context) {
	// 1. Cap the body before multipart parsing touches it
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, uploads.MaxSize+1<<20)

	// 2. Get the file from the request
	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, uploads.ErrTooLarge)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}

	// 3. Save
	stored, err := h.Uploads.Save(file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, stored)
}
