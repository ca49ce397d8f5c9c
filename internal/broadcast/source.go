package broadcast

import "fmt"

// Kind tags the payload carried by a Source.
type Kind int

const (
	// KindNone marks a Source with nothing to send.
	KindNone Kind = iota
	KindText
	KindPhoto
	KindVideo
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPhoto:
		return "photo"
	case KindVideo:
		return "video"
	case KindDocument:
		return "document"
	default:
		return "none"
	}
}

// IsMedia reports whether k carries a file.
func (k Kind) IsMedia() bool {
	return k == KindPhoto || k == KindVideo || k == KindDocument
}

// Reference points at an existing message for forward-by-reference.
type Reference struct {
	ChatID    int64
	MessageID int
}

// Source is the message being broadcast: either Text or Media, plus the
// reference of the original message. Build it with TextSource or
// MediaSource; the zero value is an empty Source.
type Source struct {
	Origin  Reference
	Kind    Kind
	Text    string // KindText only
	FileID  string // media kinds only; for photos, the largest variant
	Caption string // media kinds only, may be empty
}

// TextSource builds a text-only Source.
func TextSource(origin Reference, text string) Source {
	return Source{Origin: origin, Kind: KindText, Text: text}
}

// MediaSource builds a photo, video or document Source.
func MediaSource(origin Reference, kind Kind, fileID, caption string) Source {
	return Source{Origin: origin, Kind: kind, FileID: fileID, Caption: caption}
}

// Validate returns ErrEmptyContent when there is nothing to send. Media
// without a caption is valid; text must be non-empty.
func (s Source) Validate() error {
	switch {
	case s.Kind == KindText && s.Text != "":
		return nil
	case s.Kind.IsMedia():
		return nil
	default:
		return ErrEmptyContent
	}
}

func (s Source) String() string {
	return fmt.Sprintf("%s(chat=%d msg=%d)", s.Kind, s.Origin.ChatID, s.Origin.MessageID)
}
