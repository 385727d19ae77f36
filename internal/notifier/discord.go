package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
	log       *logrus.Logger
}

func NewDiscordNotifier(session *discordgo.Session, channelID string, log *logrus.Logger) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
		log:       log,
	}
}

func (n *DiscordNotifier) Notify(_ context.Context, event Event) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	_, err := n.session.ChannelMessageSend(n.channelID, FormatMessage(event))
	if err != nil {
		n.log.WithError(err).WithField("booking_id", event.BookingID).Warn("failed to send discord message")
		return err
	}

	return nil
}

var headlines = map[EventKind]string{
	EventBookingCreated:    "🛎️ **New Booking**",
	EventBookingUpdated:    "✏️ **Booking Updated**",
	EventBookingCancelled:  "❌ **Booking Cancelled**",
	EventBookingDeleted:    "🗑️ **Booking Deleted**",
	EventBookingCheckedIn:  "🔑 **Guest Checked In**",
	EventBookingCheckedOut: "👋 **Guest Checked Out**",
	EventPaymentRecorded:   "💰 **Payment Recorded**",
}

// FormatMessage renders the channel message for an event.
func FormatMessage(event Event) string {
	headline, ok := headlines[event.Kind]
	if !ok {
		headline = "**" + string(event.Kind) + "**"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n**Booking:** %s\n**Guest:** %s", headline, event.Reference, event.GuestName)
	if len(event.Rooms) > 0 {
		fmt.Fprintf(&b, "\n**Rooms:** %s", strings.Join(event.Rooms, ", "))
	}
	if event.CheckIn != "" {
		fmt.Fprintf(&b, "\n**Dates:** %s - %s", event.CheckIn, event.CheckOut)
	}
	if event.Kind == EventPaymentRecorded && event.Amount != nil {
		fmt.Fprintf(&b, "\n**Amount:** %s", event.Amount.StringFixed(2))
	} else {
		fmt.Fprintf(&b, "\n**Total:** %s", event.TotalPrice.StringFixed(2))
	}
	return b.String()
}
