package events

import (
	"context"
	"fmt"

	"officehub/pkg/kafka"
	"officehub/pkg/logger"
)

// AuditHandler returns a consumer handler that writes one structured log
// line per booking event. Undecodable payloads are reported as permanent
// failures so the consumer skips them.
func AuditHandler(log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var payload Payload
		if err := msg.DecodeValue(&payload); err != nil {
			return kafka.NewPermanentError("undecodable booking event", err)
		}

		args := []any{
			"event_type", payload.EventType,
			"event_id", msg.GetEventID(),
			"room_id", payload.RoomID,
			"occurred_at", payload.OccurredAt,
		}

		switch payload.EventType {
		case TypeBookingCreated, TypeBookingCancelled:
			if payload.Booking == nil {
				return kafka.NewPermanentError(fmt.Sprintf("%s event without booking", payload.EventType), nil)
			}
			args = append(args,
				"booking_id", payload.Booking.ID,
				"employee_id", payload.Booking.EmployeeID,
				"start_time", payload.Booking.StartTime,
				"end_time", payload.Booking.EndTime,
			)
		case TypeBookingsCleared:
			if payload.Count != nil {
				args = append(args, "count", *payload.Count)
			}
		default:
			log.Warn("Ignoring unknown booking event", args...)
			return nil
		}

		log.Info("Booking event", args...)
		return nil
	}
}
