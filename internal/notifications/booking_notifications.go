package notifications

import (
	"context"
	"fmt"

	"parkhere/internal/domain/storage"

	"github.com/9ssi7/exponent"
)

type BookingEvent string

const (
	BookingConfirmed BookingEvent = "CONFIRMED"
	BookingExtended  BookingEvent = "EXTENDED"
	BookingCancelled BookingEvent = "CANCELLED"
	PaymentRefunded  BookingEvent = "REFUNDED"
)

// SendBookingNotification fans a booking event out to every device the
// user has registered.
func SendBookingNotification(ctx context.Context, push PushSender, store *storage.Container, userID int64, event BookingEvent, bookingID int64) error {
	tokens, err := store.PushTokens.GetTokensByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	var title, body string
	switch event {
	case BookingConfirmed:
		title = "Booking Confirmed"
		body = fmt.Sprintf("Your parking booking #%d is confirmed. 🅿️", bookingID)
	case BookingExtended:
		title = "Booking Extended"
		body = fmt.Sprintf("Your parking booking #%d has been extended.", bookingID)
	case BookingCancelled:
		title = "Booking Cancelled"
		body = fmt.Sprintf("Your parking booking #%d has been cancelled.", bookingID)
	case PaymentRefunded:
		title = "Refund Processed"
		body = fmt.Sprintf("Your payment for booking #%d has been refunded.", bookingID)
	default:
		title = "Booking Update"
		body = fmt.Sprintf("Your parking booking #%d has an update.", bookingID)
	}

	msgs := make([]*exponent.Message, 0, len(tokens))
	for _, t := range tokens {
		token := exponent.Token(t)
		msg := &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			// data drives deep linking when the notification is tapped
			Data: map[string]string{
				"type":      "booking",
				"event":     string(event),
				"bookingId": fmt.Sprintf("%d", bookingID),
				"screen":    "my-bookings-screen",
			},
		}
		msgs = append(msgs, msg)
	}

	if _, err := push.Publish(ctx, msgs); err != nil {
		return err
	}
	return nil
}
