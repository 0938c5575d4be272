package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gold-lifestyle-backend/internal/apperr"
	"gold-lifestyle-backend/internal/logger"
	"gold-lifestyle-backend/internal/models"
)

// VariantSubmission is the full desired variant state of one product form.
type VariantSubmission struct {
	Variants     []models.VariantEdit
	PrimaryImage *models.Upload
}

// VariantService converges a product's stored color variants and their
// images to a resubmitted form.
type VariantService struct {
	catalog CatalogStore
	blobs   BlobStore
	logger  *logger.Logger
	now     func() time.Time
}

func NewVariantService(catalog CatalogStore, blobs BlobStore, log *logger.Logger) *VariantService {
	return &VariantService{
		catalog: catalog,
		blobs:   blobs,
		logger:  log,
		now:     time.Now,
	}
}

type variantEntry struct {
	models.VariantEdit
	existing *models.ProductColor
	uploads  []*models.Upload
	colorID  uuid.UUID
}

type pendingImage struct {
	colorID uuid.UUID
	upload  *models.Upload
}

// Reconcile applies, in order: variant updates and inserts, image uploads,
// image relabelling for renamed variants, deletion of variants missing from
// the submission (blobs first, then image rows, then variant rows), and the
// primary image. Mutations are not rolled back on failure; the returned
// changes describe what was applied before the error.
func (s *VariantService) Reconcile(ctx context.Context, productID uuid.UUID, current []models.ProductColor, sub VariantSubmission) (*models.AppliedChanges, error) {
	changes := &models.AppliedChanges{}

	currentByID := make(map[uuid.UUID]models.ProductColor, len(current))
	for _, color := range current {
		currentByID[color.ID] = color
	}
	entries := collapseEdits(sub.Variants, currentByID)

	kept := make(map[uuid.UUID]bool)
	finalNames := make(map[uuid.UUID]string)
	var renames []models.RenamePair
	var images []pendingImage

	for _, e := range entries {
		hex := nullString(NormalizeColorHex(e.ColorHex))

		if e.existing != nil {
			cur := e.existing
			kept[cur.ID] = true
			if cur.ColorName != e.ColorName || cur.ColorHex != hex {
				if err := s.catalog.UpdateColor(ctx, cur.ID, e.ColorName, hex); err != nil {
					return changes, fmt.Errorf("failed to update color %s: %w", cur.ID, err)
				}
				changes.Updated = append(changes.Updated, cur.ID)
			}

			from := e.OriginalColorName
			if from == "" {
				from = cur.ColorName
			}
			if from != e.ColorName {
				renames = append(renames, models.RenamePair{ColorID: cur.ID, From: from, To: e.ColorName})
			}
			e.colorID = cur.ID
		} else {
			row, err := s.catalog.InsertColor(ctx, productID, e.ColorName, hex)
			if err != nil {
				return changes, fmt.Errorf("failed to insert color %q: %w", e.ColorName, err)
			}
			changes.Inserted = append(changes.Inserted, row.ID)
			e.colorID = row.ID
		}

		finalNames[e.colorID] = e.ColorName
		for _, upload := range e.uploads {
			images = append(images, pendingImage{colorID: e.colorID, upload: upload})
		}
	}

	var uploadErrs []error
	for _, img := range images {
		colorName := finalNames[img.colorID]
		blobPath := variantImagePath(productID, img.upload, s.now())
		url, err := s.blobs.Upload(ctx, blobPath, img.upload.Data, uploadContentType(img.upload))
		if err != nil {
			s.logger.Error("failed to upload image for color %q of product %s: %v", colorName, productID, err)
			uploadErrs = append(uploadErrs, fmt.Errorf("color %q: %w", colorName, err))
			continue
		}
		if _, err := s.catalog.InsertImage(ctx, productID, img.colorID, url, colorName); err != nil {
			if rmErr := s.blobs.Remove(ctx, []string{blobPath}); rmErr != nil {
				s.logger.Warn("failed to remove orphaned upload %s: %v", blobPath, rmErr)
			}
			return changes, fmt.Errorf("failed to record image for color %q: %w", colorName, err)
		}
		changes.UploadedImages = append(changes.UploadedImages, url)
	}

	for _, pair := range renames {
		includeLegacy := !nameTakenByOther(finalNames, pair.ColorID, pair.From)
		n, err := s.catalog.RenameImages(ctx, productID, pair.ColorID, pair.From, pair.To, includeLegacy)
		if err != nil {
			return changes, fmt.Errorf("failed to relabel images %q -> %q: %w", pair.From, pair.To, err)
		}
		if n > 0 || currentByID[pair.ColorID].ColorName != pair.To {
			changes.Renamed = append(changes.Renamed, pair)
		}
	}

	if err := s.deleteMissing(ctx, productID, current, kept, finalNames, changes); err != nil {
		return changes, err
	}

	if sub.PrimaryImage != nil {
		blobPath := primaryImagePath(productID, sub.PrimaryImage, s.now())
		url, err := s.blobs.Upload(ctx, blobPath, sub.PrimaryImage.Data, uploadContentType(sub.PrimaryImage))
		if err != nil {
			s.logger.Error("failed to upload primary image of product %s: %v", productID, err)
			uploadErrs = append(uploadErrs, fmt.Errorf("primary image: %w", err))
		} else {
			if err := s.catalog.SetPrimaryImage(ctx, productID, url); err != nil {
				return changes, fmt.Errorf("failed to set primary image: %w", err)
			}
			changes.PrimaryImageURL = url
		}
	}

	if len(uploadErrs) > 0 {
		return changes, apperr.Upstream("failed to upload images", errors.Join(uploadErrs...))
	}
	return changes, nil
}

// deleteMissing removes every current variant that the submission no longer
// names, together with its images. All blob paths go out in one remove call
// before any row is deleted, so a failed remove leaves the rows in place for
// a later retry.
func (s *VariantService) deleteMissing(ctx context.Context, productID uuid.UUID, current []models.ProductColor, kept map[uuid.UUID]bool, finalNames map[uuid.UUID]string, changes *models.AppliedChanges) error {
	doomed := make(map[uuid.UUID]bool)
	doomedNames := make(map[string]bool)
	var colorIDs []uuid.UUID
	for _, color := range current {
		if kept[color.ID] {
			continue
		}
		doomed[color.ID] = true
		doomedNames[color.ColorName] = true
		colorIDs = append(colorIDs, color.ID)
	}
	if len(colorIDs) == 0 {
		return nil
	}

	survivingNames := make(map[string]bool, len(finalNames))
	for _, name := range finalNames {
		survivingNames[name] = true
	}

	images, err := s.catalog.ListImages(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}

	var imageIDs []uuid.UUID
	var paths []string
	for _, img := range images {
		owned := img.ColorID.Valid && doomed[img.ColorID.UUID]
		legacy := !img.ColorID.Valid && doomedNames[img.ColorName] && !survivingNames[img.ColorName]
		if !owned && !legacy {
			continue
		}
		imageIDs = append(imageIDs, img.ID)
		if p, ok := s.blobs.PathFromURL(img.URL); ok {
			paths = append(paths, p)
		}
	}

	if len(paths) > 0 {
		if err := s.blobs.Remove(ctx, paths); err != nil {
			return apperr.Upstream("failed to delete variant images from storage", err)
		}
		changes.DeletedBlobs = append(changes.DeletedBlobs, paths...)
	}
	if len(imageIDs) > 0 {
		if err := s.catalog.DeleteImages(ctx, imageIDs); err != nil {
			return fmt.Errorf("failed to delete variant images: %w", err)
		}
	}
	if err := s.catalog.DeleteColors(ctx, colorIDs); err != nil {
		return fmt.Errorf("failed to delete colors: %w", err)
	}
	changes.Deleted = append(changes.Deleted, colorIDs...)

	s.logger.Info("deleted %d colors and %d images of product %s", len(colorIDs), len(imageIDs), productID)
	return nil
}

// collapseEdits drops unnamed entries and merges entries that point at the
// same existing variant. The later entry's fields win; uploads from all of
// them are kept. Ids that are not current variants of the product are
// treated as new variants.
func collapseEdits(edits []models.VariantEdit, currentByID map[uuid.UUID]models.ProductColor) []*variantEntry {
	var out []*variantEntry
	byID := make(map[uuid.UUID]*variantEntry)

	for _, edit := range edits {
		edit.ColorName = strings.TrimSpace(edit.ColorName)
		edit.OriginalColorName = strings.TrimSpace(edit.OriginalColorName)
		if edit.ColorName == "" {
			continue
		}

		var existing *models.ProductColor
		if edit.ID != nil {
			if cur, ok := currentByID[*edit.ID]; ok {
				existing = &cur
			}
		}

		if existing != nil {
			if prev, ok := byID[existing.ID]; ok {
				prev.VariantEdit = edit
				if edit.Image != nil {
					prev.uploads = append(prev.uploads, edit.Image)
				}
				continue
			}
		}

		e := &variantEntry{VariantEdit: edit, existing: existing}
		if edit.Image != nil {
			e.uploads = append(e.uploads, edit.Image)
		}
		if existing != nil {
			byID[existing.ID] = e
		}
		out = append(out, e)
	}
	return out
}

func nameTakenByOther(finalNames map[uuid.UUID]string, self uuid.UUID, name string) bool {
	for id, n := range finalNames {
		if id != self && n == name {
			return true
		}
	}
	return false
}
