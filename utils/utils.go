package utils

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"parcel-delivery/models/user"
	"parcel-delivery/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// NormalizeEmail lowercases and trims an email so lookups and the unique
// index behave case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetUserByEmail retrieves a user by their normalized email. A missing row
// surfaces as gorm.ErrRecordNotFound so callers can branch on it.
func GetUserByEmail(db *gorm.DB, email string) (*user.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, errors.New("email cannot be empty")
	}

	var userModel user.User
	if err := db.Where("email = ?", email).First(&userModel).Error; err != nil {
		return nil, err
	}

	return &userModel, nil
}

// EscapeLike escapes LIKE metacharacters so user input only matches literally.
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ValidatePhoneNumber validates phone number using the pattern
// ^(?:\+88)?01[0-9]{9}$ — 01xxxxxxxxx or +8801xxxxxxxxx.
func ValidatePhoneNumber(phone string) bool {
	phone = strings.TrimSpace(phone)
	pattern := `^(?:\+88)?01[0-9]{9}$`
	re := regexp.MustCompile(pattern)
	return re.MatchString(phone)
}

// sanitizeRequestBody sanitizes request body for large or encoded content
func sanitizeRequestBody(c *fiber.Ctx) string {
	contentType := c.Get("Content-Type")
	if strings.Contains(contentType, "multipart/form-data") {
		formData := make(map[string]interface{})
		if form, err := c.MultipartForm(); err == nil {
			for key, values := range form.Value {
				if len(values) > 0 {
					formData[key] = values[0]
				}
			}
		}
		if jsonBytes, err := json.Marshal(formData); err == nil {
			return string(jsonBytes)
		}
		return "[MULTIPART_FORM_DATA]"
	}

	body := string(c.Body())
	if len(body) > 1000 && (strings.Contains(body, "base64") || isLikelyBase64(body)) {
		return "[LARGE_REQUEST_BODY_WITH_POSSIBLE_FILE_CONTENT]"
	}

	return body
}

// isLikelyBase64 detects if content looks like base64
func isLikelyBase64(content string) bool {
	if len(content) < 100 {
		return false
	}

	base64Chars := 0
	for _, char := range content {
		if (char >= 'A' && char <= 'Z') ||
			(char >= 'a' && char <= 'z') ||
			(char >= '0' && char <= '9') ||
			char == '+' || char == '/' || char == '=' {
			base64Chars++
		}
	}

	return float64(base64Chars)/float64(len(content)) > 0.8
}

// CreateSanitizedLogEntry creates a deep copied and sanitized log entry for
// the async request logger.
func CreateSanitizedLogEntry(c *fiber.Ctx) types.LogEntry {
	// Deep copies keep the entry valid after fiber recycles the context.
	method := string([]byte(c.Method()))
	url := string([]byte(c.OriginalURL()))
	requestBody := sanitizeRequestBody(c)
	responseBody := string(append([]byte(nil), c.Response().Body()...))

	requestHeaders := make([]byte, len(c.Request().Header.Header()))
	copy(requestHeaders, c.Request().Header.Header())

	responseHeaders := make([]byte, len(c.Response().Header.Header()))
	copy(responseHeaders, c.Response().Header.Header())

	return types.LogEntry{
		Method:          method,
		URL:             url,
		RequestBody:     requestBody,
		ResponseBody:    responseBody,
		RequestHeaders:  string(requestHeaders),
		ResponseHeaders: string(responseHeaders),
		StatusCode:      c.Response().StatusCode(),
		CreatedAt:       time.Now(),
	}
}
