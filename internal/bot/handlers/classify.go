package handlers

import (
	"strconv"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/promobot/internal/broadcast"
)

// Event is the routing class of an inbound message.
type Event int

const (
	EventOther Event = iota
	EventCommand
	EventForwarded
	EventText
)

func (e Event) String() string {
	switch e {
	case EventCommand:
		return "command"
	case EventForwarded:
		return "forwarded"
	case EventText:
		return "text"
	default:
		return "other"
	}
}

// Classify routes a message. A forwarded message is always EventForwarded,
// even when its text looks like a command.
func Classify(msg *models.Message) Event {
	switch {
	case msg == nil:
		return EventOther
	case IsForwarded(msg):
		return EventForwarded
	case strings.HasPrefix(msg.Text, "/"):
		return EventCommand
	case strings.TrimSpace(msg.Text) != "":
		return EventText
	default:
		return EventOther
	}
}

// IsForwarded reports whether msg carries a forward origin.
func IsForwarded(msg *models.Message) bool {
	return msg != nil && msg.ForwardOrigin != nil
}

// ParseCommand splits "/name@bot arg1 arg2" into "name" and its arguments.
// It returns an empty name for text that is not a command.
func ParseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return strings.ToLower(name), fields[1:]
}

// MatchCommand matches non-forwarded messages invoking the named command.
func MatchCommand(name string) tgbot.MatchFunc {
	return func(update *models.Update) bool {
		if update == nil || Classify(update.Message) != EventCommand {
			return false
		}
		cmd, _ := ParseCommand(update.Message.Text)
		return cmd == name
	}
}

// MatchForwarded matches any forwarded message.
func MatchForwarded(update *models.Update) bool {
	return update != nil && Classify(update.Message) == EventForwarded
}

// SourceFromMessage builds the broadcast source for msg. Media takes
// precedence over text; for photos the largest variant is used.
func SourceFromMessage(msg *models.Message) broadcast.Source {
	if msg == nil {
		return broadcast.Source{}
	}
	origin := broadcast.Reference{ChatID: msg.Chat.ID, MessageID: msg.ID}

	switch {
	case len(msg.Photo) > 0:
		return broadcast.MediaSource(origin, broadcast.KindPhoto, largestPhoto(msg.Photo).FileID, msg.Caption)
	case msg.Video != nil:
		return broadcast.MediaSource(origin, broadcast.KindVideo, msg.Video.FileID, msg.Caption)
	case msg.Document != nil:
		return broadcast.MediaSource(origin, broadcast.KindDocument, msg.Document.FileID, msg.Caption)
	case msg.Text != "":
		return broadcast.TextSource(origin, msg.Text)
	default:
		return broadcast.Source{Origin: origin}
	}
}

// largestPhoto picks the variant with the largest area. Ties keep the later
// entry, which is also what Telegram's size ordering gives.
func largestPhoto(sizes []models.PhotoSize) models.PhotoSize {
	best := sizes[len(sizes)-1]
	for _, p := range sizes {
		if p.Width*p.Height > best.Width*best.Height {
			best = p
		}
	}
	return best
}

func parseUserID(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}
