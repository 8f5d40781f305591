package audit

import (
	"context"
	"fmt"
	"log/slog"

	id "peerhelp/pkg/domain"
	"peerhelp/pkg/requestcontext"
)

// Emitter accepts audit events. publisher.Publisher is the production implementation.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// LogAudit logs an audit event to the structured logger and emits it.
// It enriches events with the request ID and pulls account_id, actor_id and
// reason out of attrList. Emit failures are logged and never returned.
func LogAudit(ctx context.Context, logger *slog.Logger, emitter Emitter, event AuditEvent, attrList ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attrList = append(attrList, "request_id", requestID)
	}

	if logger != nil {
		args := append(attrList, "event", string(event), "log_type", "audit")
		logger.InfoContext(ctx, string(event), args...)
	}

	if emitter == nil {
		return
	}

	accountID, _ := id.ParseAccountID(stringAttr(attrList, "account_id"))
	err := emitter.Emit(ctx, Event{
		Category:  event.Category(),
		Timestamp: requestcontext.Now(ctx),
		AccountID: accountID,
		ActorID:   stringAttr(attrList, "actor_id"),
		Action:    string(event),
		Subject:   stringAttr(attrList, "subject"),
		Reason:    stringAttr(attrList, "reason"),
		RequestID: requestID,
	})
	if err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event",
			"event", string(event),
			"error", err,
		)
	}
}

// stringAttr returns the value after key in a slog-style key/value list.
// Stringers are rendered; other value types yield "".
func stringAttr(list []any, key string) string {
	for i := 0; i+1 < len(list); i += 2 {
		if k, ok := list[i].(string); !ok || k != key {
			continue
		}
		switch v := list[i+1].(type) {
		case string:
			return v
		case fmt.Stringer:
			return v.String()
		}
		return ""
	}
	return ""
}
