package storage

import (
	"context"
	"fmt"
)

// ModelStore persists trained forecast models as opaque blobs, one per
// (tenant, product). A retrain overwrites the prior artifact wholesale;
// there is no versioning.
type ModelStore struct {
	objects ObjectStorage
}

func NewModelStore(objects ObjectStorage) *ModelStore {
	return &ModelStore{objects: objects}
}

// Load fetches the serialized model. found=false means no model was ever
// trained (or it was dropped), which callers treat as a retrain trigger.
func (s *ModelStore) Load(ctx context.Context, tenantID, productCode string) ([]byte, bool, error) {
	return s.objects.GetObject(ctx, modelKey(tenantID, productCode))
}

// Save overwrites the stored model for the product.
func (s *ModelStore) Save(ctx context.Context, tenantID, productCode string, data []byte) error {
	return s.objects.PutObject(ctx, modelKey(tenantID, productCode), data)
}

func modelKey(tenantID, productCode string) string {
	return fmt.Sprintf("%s/models/%s.json", tenantID, productCode)
}
