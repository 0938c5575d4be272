package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gold-lifestyle-backend/internal/apperr"
	"gold-lifestyle-backend/internal/models"
	"gold-lifestyle-backend/internal/money"
	"gold-lifestyle-backend/internal/services"
)

const maxProductFormMemory = 32 << 20

var colorFieldKey = regexp.MustCompile(`^colors\[(\d+)\]\[(\w+)\]$`)

// decodeProductForm reads a product multipart form once into a ProductInput.
// Color entries keep their form index order; missing indexes are skipped.
func decodeProductForm(r *http.Request) (services.ProductInput, error) {
	var in services.ProductInput
	if err := r.ParseMultipartForm(maxProductFormMemory); err != nil {
		return in, apperr.Validation("invalid multipart form")
	}
	form := r.MultipartForm

	if v, ok := formValue(form, "name"); ok {
		in.Fields.Name = &v
	}
	if v, ok := formValue(form, "description"); ok {
		in.Fields.Description = &v
	}

	price, ok := formValue(form, "priceMajorUnits")
	if !ok {
		price, ok = formValue(form, "amountDollars")
	}
	if ok {
		cents, err := money.ParseMajor(price)
		if err != nil {
			return in, apperr.Validation(fmt.Sprintf("invalid price: %v", err))
		}
		in.Fields.PriceCents = &cents
	}

	for _, size := range form.Value["sizes[]"] {
		if size = strings.TrimSpace(size); size != "" {
			in.Fields.Sizes = append(in.Fields.Sizes, size)
		}
	}

	variants, err := decodeColors(form)
	if err != nil {
		return in, err
	}
	in.Submission.Variants = variants

	if headers := form.File["mainImage"]; len(headers) > 0 {
		upload, err := readUpload(headers[0])
		if err != nil {
			return in, err
		}
		in.Submission.PrimaryImage = upload
	}

	return in, nil
}

func decodeColors(form *multipart.Form) ([]models.VariantEdit, error) {
	byIndex := make(map[int]*models.VariantEdit)
	entry := func(idx int) *models.VariantEdit {
		e, ok := byIndex[idx]
		if !ok {
			e = &models.VariantEdit{}
			byIndex[idx] = e
		}
		return e
	}

	for key, values := range form.Value {
		idx, field, ok := parseColorKey(key)
		if !ok || len(values) == 0 {
			continue
		}
		value := strings.TrimSpace(values[0])
		e := entry(idx)
		switch field {
		case "id":
			if value == "" {
				continue
			}
			id, err := uuid.Parse(value)
			if err != nil {
				return nil, apperr.Validation(fmt.Sprintf("colors[%d]: invalid id", idx))
			}
			e.ID = &id
		case "colorName":
			e.ColorName = value
		case "originalColorName":
			e.OriginalColorName = value
		case "colorHex":
			e.ColorHex = value
		}
	}

	for key, headers := range form.File {
		idx, field, ok := parseColorKey(key)
		if !ok || field != "file" || len(headers) == 0 {
			continue
		}
		upload, err := readUpload(headers[0])
		if err != nil {
			return nil, err
		}
		entry(idx).Image = upload
	}

	indexes := make([]int, 0, len(byIndex))
	for idx := range byIndex {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	edits := make([]models.VariantEdit, 0, len(indexes))
	for _, idx := range indexes {
		edits = append(edits, *byIndex[idx])
	}
	return edits, nil
}

func parseColorKey(key string) (int, string, bool) {
	m := colorFieldKey.FindStringSubmatch(key)
	if m == nil {
		return 0, "", false
	}
	idx, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return idx, m[2], true
}

func formValue(form *multipart.Form, key string) (string, bool) {
	values := form.Value[key]
	if len(values) == 0 {
		return "", false
	}
	v := strings.TrimSpace(values[0])
	return v, v != ""
}

func readUpload(header *multipart.FileHeader) (*models.Upload, error) {
	if header.Size == 0 {
		return nil, nil
	}
	file, err := header.Open()
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("failed to open file %s", header.Filename))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("failed to read file %s", header.Filename))
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &models.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
