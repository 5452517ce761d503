package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/rail-complaints/internal/events"
)

// AuditService writes a structured log line for every domain event. It is
// the only subscriber; outbound notification delivery is deliberately out of
// scope.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventComplaintSubmitted,
		events.EventComplaintStatusChanged,
		events.EventComplaintTriageUpdated,
		events.EventComplaintDeleted,
		events.EventAccountLoggedIn,
		events.EventAccountLoggedOut,
	} {
		a.dispatcher.Subscribe(eventType, a.logEvent)
	}
}

func (a *AuditService) logEvent(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Time("at", event.Timestamp),
	}
	if event.Reference != "" {
		fields = append(fields, zap.String("reference", event.Reference))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", *event.ActorID))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}
	a.logger.Info("audit", fields...)
	return nil
}
