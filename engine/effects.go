// ABOUTME: Best-effort side-effect hooks fired after successful mutations
// ABOUTME: Sink failures are logged and never surface as mutation errors
package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/harperreed/touchbase/models"
)

// EffectSink receives fire-and-forget notifications after a mutation
// commits. Errors from sinks are logged by the coordinator and swallowed;
// the consistency contract covers Activity and Contact state only.
type EffectSink interface {
	ActivityLogged(ctx context.Context, contact *models.Contact, activity *models.Activity) error
	ActivityRemoved(ctx context.Context, contact *models.Contact, activity *models.Activity) error
}

// LogNotifier is an EffectSink that surfaces mutations as structured log
// lines, standing in for the toast/notification collaborator.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{log: logger}
}

func (n *LogNotifier) ActivityLogged(_ context.Context, contact *models.Contact, activity *models.Activity) error {
	fields := []zap.Field{
		zap.String("contact", contact.Name),
		zap.String("type", string(activity.Type)),
	}
	if contact.NextFollowUp != nil {
		fields = append(fields, zap.Time("next_follow_up", *contact.NextFollowUp))
	}
	n.log.Info("activity logged", fields...)
	return nil
}

func (n *LogNotifier) ActivityRemoved(_ context.Context, contact *models.Contact, activity *models.Activity) error {
	n.log.Info("activity removed",
		zap.String("contact", contact.Name),
		zap.String("type", string(activity.Type)))
	return nil
}
