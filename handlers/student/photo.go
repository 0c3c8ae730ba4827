package student

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/schoolhub/records-api/model"
	"github.com/schoolhub/records-api/utils/response"
)

const maxPhotoSize = 5 * 1024 * 1024 // 5 MB

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// UploadPhoto handles POST /api/v1/students/:id/photo. The photo goes to
// object storage; only its public URL and key are stored on the record.
func (h *StudentHandler) UploadPhoto(c *fiber.Ctx) error {
	if h.storageClient == nil {
		return response.ServiceUnavailable(c, "Photo storage is not configured")
	}

	id := c.Params("id")

	var student model.Student
	if err := h.db.First(&student, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return response.BadRequest(c, "A photo file is required")
	}

	if fileHeader.Size > maxPhotoSize {
		return response.BadRequest(c, "Photo must be smaller than 5 MB")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedPhotoTypes[contentType] {
		return response.BadRequest(c, "Photo must be a JPEG, PNG or WebP image")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("students/%d/photo-%d%s", student.ID, time.Now().Unix(), ext)

	url, err := h.storageClient.UploadFile(c.Context(), key, file, contentType)
	if err != nil {
		return response.InternalServerError(c, "Failed to store photo")
	}

	oldKey := student.PhotoKey
	student.PhotoURL = url
	student.PhotoKey = key
	if err := h.db.Save(&student).Error; err != nil {
		return response.InternalServerError(c, "Failed to update student record")
	}

	// Remove the previous photo after the record points at the new one
	if oldKey != "" && oldKey != key {
		_ = h.storageClient.DeleteFile(c.Context(), oldKey)
	}

	return response.SuccessWithMessage(c, "Photo uploaded successfully", fiber.Map{
		"photo_url": url,
	})
}
