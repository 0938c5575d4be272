package events

import (
	"github.com/google/uuid"
	"gold-lifestyle-backend/internal/models"
)

func OrderCreatedPayload(orderID uuid.UUID, totalCents int64, reference string) map[string]interface{} {
	return map[string]interface{}{
		"order_id":          orderID.String(),
		"status":            models.OrderStatusPending,
		"total_cents":       totalCents,
		"payment_reference": reference,
	}
}

func OrderCompletedPayload(orderID uuid.UUID, totalCents int64, transactionID string) map[string]interface{} {
	return map[string]interface{}{
		"order_id":                orderID.String(),
		"status":                  models.OrderStatusCompleted,
		"total_cents":             totalCents,
		"external_transaction_id": transactionID,
	}
}

func OrderFailedPayload(orderID uuid.UUID, externalStatus string) map[string]interface{} {
	return map[string]interface{}{
		"order_id":        orderID.String(),
		"status":          models.OrderStatusFailed,
		"external_status": externalStatus,
	}
}

func ProductSavedPayload(productID uuid.UUID, changes *models.AppliedChanges) map[string]interface{} {
	payload := map[string]interface{}{
		"product_id": productID.String(),
	}
	if changes != nil {
		payload["colors_inserted"] = len(changes.Inserted)
		payload["colors_updated"] = len(changes.Updated)
		payload["colors_deleted"] = len(changes.Deleted)
		payload["images_uploaded"] = len(changes.UploadedImages)
	}
	return payload
}

func ProductDeletedPayload(productID uuid.UUID, filesRemoved int) map[string]interface{} {
	return map[string]interface{}{
		"product_id":    productID.String(),
		"files_removed": filesRemoved,
	}
}
