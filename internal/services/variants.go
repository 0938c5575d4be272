package services

import (
	"database/sql"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gold-lifestyle-backend/internal/models"
)

// NormalizeColorHex returns hex as "#RRGGBB", expanding the three-digit
// shorthand. Anything that is not a hex color yields "".
func NormalizeColorHex(hex string) string {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return ""
	}
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return ""
		}
	}
	return "#" + strings.ToUpper(hex)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// variantImagePath namespaces a variant image under its product. The token
// keeps two uploads in the same millisecond apart.
func variantImagePath(productID uuid.UUID, upload *models.Upload, now time.Time) string {
	return fmt.Sprintf("%s/%d-%s%s", productID, now.UnixMilli(), randomToken(), uploadExtension(upload))
}

func primaryImagePath(productID uuid.UUID, upload *models.Upload, now time.Time) string {
	return fmt.Sprintf("%s/primary-%d%s", productID, now.UnixMilli(), uploadExtension(upload))
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func uploadExtension(upload *models.Upload) string {
	if ext := strings.ToLower(path.Ext(upload.Filename)); ext != "" && ext != "." {
		return ext
	}
	if len(upload.Data) > 0 {
		if ext := mimetype.Detect(upload.Data).Extension(); ext != "" {
			return ext
		}
	}
	return ".jpg"
}

func uploadContentType(upload *models.Upload) string {
	if upload.ContentType != "" && upload.ContentType != "application/octet-stream" {
		return upload.ContentType
	}
	return mimetype.Detect(upload.Data).String()
}
