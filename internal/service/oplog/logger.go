package oplog

import (
	"context"
	"log/slog"

	"github.com/harvestlink/harvest-backend-go/internal/domain/oplog"
	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
)

type LoggerImpl struct {
	repo oplog.Repository
}

// Log stores entry, filling UserID from the caller's token when unset.
// A failed write is logged and dropped.
func (l *LoggerImpl) Log(ctx context.Context, entry oplog.Entry) {
	if entry.UserID == nil {
		if identity, err := user.IdentityFromContext(ctx); err == nil {
			entry.UserID = &identity.UserID
		}
	}

	if err := l.repo.Insert(ctx, entry); err != nil {
		slog.Warn("failed to write operation log",
			"operation", entry.Operation,
			"resource_type", entry.ResourceType,
			"error", err,
		)
	}
}

func NewLogger(repo oplog.Repository) oplog.Logger {
	return &LoggerImpl{repo: repo}
}
