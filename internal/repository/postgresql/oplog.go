package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harvestlink/harvest-backend-go/internal/domain/oplog"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/database"
)

type oplogRepositoryImpl struct {
	db *database.DB
}

func NewOplogRepository(db *database.DB) oplog.Repository {
	return &oplogRepositoryImpl{db: db}
}

// Insert implements oplog.Repository.
func (r *oplogRepositoryImpl) Insert(ctx context.Context, entry oplog.Entry) error {
	q := GetQuerier(ctx, r.db)

	before, err := marshalSnapshot(entry.Before)
	if err != nil {
		return fmt.Errorf("failed to marshal before snapshot: %w", err)
	}
	after, err := marshalSnapshot(entry.After)
	if err != nil {
		return fmt.Errorf("failed to marshal after snapshot: %w", err)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO operation_logs (operation, resource_type, resource_id, user_id, description, before_data, after_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.Operation, entry.ResourceType, entry.ResourceID, entry.UserID, entry.Description, before, after)
	if err != nil {
		return fmt.Errorf("failed to insert operation log: %w", err)
	}
	return nil
}

func marshalSnapshot(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
