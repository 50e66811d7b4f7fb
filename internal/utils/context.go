package utils

import (
	"context"
)

type contextKey string

const ContextUserIDKey contextKey = "userID"

// SessionData is the session identity threaded through request contexts.
// ExpiryDate is a millisecond epoch timestamp, matching the sessions table.
type SessionData struct {
	UserID     int32
	Token      string
	ExpiryDate int64
}

func GetUserIDFromContext(ctx context.Context) (int32, bool) {
	userID := ctx.Value(ContextUserIDKey)
	id, ok := userID.(int32)
	return id, ok
}
