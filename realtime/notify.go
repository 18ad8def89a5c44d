package realtime

import (
	"context"

	"go.uber.org/zap"
)

// NotificationSink receives payloads addressed to users with no live
// connection. The default implementation only records the gap; a push
// provider plugs in here.
type NotificationSink interface {
	NotifyOffline(ctx context.Context, userID string, payload any) error
}

// NoopSink logs the would-be push and drops it.
type NoopSink struct {
	Log *zap.Logger
}

func (s NoopSink) NotifyOffline(_ context.Context, userID string, _ any) error {
	if s.Log != nil {
		s.Log.Info("offline user, push delivery skipped", zap.String("user_id", userID))
	}
	return nil
}
