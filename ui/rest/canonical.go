package rest

import (
	domainMessage "github.com/hansai/wa-bridge/domains/message"
	"github.com/hansai/wa-bridge/infrastructure/whatsapp"
	"github.com/sirupsen/logrus"
)

// canonicalFromMessage reduces an inbound message of any recognized type
// to the canonical (sender, text, id, metadata) form. Non-text types get
// bracketed placeholder texts; audio and unknown types are logged and
// dropped.
func canonicalFromMessage(msg whatsapp.Message) (domainMessage.CanonicalMessage, bool) {
	canonical := domainMessage.CanonicalMessage{
		Sender:    msg.From,
		MessageID: msg.ID,
		Metadata:  map[string]string{"type": msg.Type},
	}

	switch msg.Type {
	case "text":
		if msg.Text == nil {
			return canonical, false
		}
		canonical.Text = msg.Text.Body
		canonical.Metadata["timestamp"] = msg.Timestamp

	case "image":
		if msg.Image == nil {
			return canonical, false
		}
		canonical.Text = placeholder("[Image]", msg.Image.Caption)
		canonical.Metadata["media_id"] = msg.Image.ID

	case "video":
		if msg.Video == nil {
			return canonical, false
		}
		canonical.Text = placeholder("[Video]", msg.Video.Caption)
		canonical.Metadata["media_id"] = msg.Video.ID

	case "document":
		if msg.Document == nil {
			return canonical, false
		}
		canonical.Text = placeholder("[Document]", msg.Document.Filename)
		canonical.Metadata["media_id"] = msg.Document.ID
		canonical.Metadata["filename"] = msg.Document.Filename

	case "interactive":
		if msg.Interactive == nil {
			return canonical, false
		}
		switch msg.Interactive.Type {
		case "button_reply":
			if msg.Interactive.ButtonReply == nil {
				return canonical, false
			}
			canonical.Text = placeholder("[Button]", msg.Interactive.ButtonReply.Title)
			canonical.Metadata["type"] = "button"
			canonical.Metadata["button_id"] = msg.Interactive.ButtonReply.ID
		case "list_reply":
			if msg.Interactive.ListReply == nil {
				return canonical, false
			}
			canonical.Text = placeholder("[List Selection]", msg.Interactive.ListReply.Title)
			canonical.Metadata["type"] = "list"
			canonical.Metadata["list_id"] = msg.Interactive.ListReply.ID
		default:
			logrus.Debugf("[WEBHOOK] Skipping interactive type %s from %s", msg.Interactive.Type, msg.From)
			return canonical, false
		}

	case "audio":
		// Audio transcription is out of scope; receipt is logged only.
		var mediaID string
		if msg.Audio != nil {
			mediaID = msg.Audio.ID
		}
		logrus.Infof("[WEBHOOK] Received audio from %s: %s", msg.From, mediaID)
		return canonical, false

	default:
		logrus.Debugf("[WEBHOOK] Skipping unsupported message type %s from %s", msg.Type, msg.From)
		return canonical, false
	}

	return canonical, true
}

func placeholder(tag, detail string) string {
	if detail == "" {
		return tag
	}
	return tag + " " + detail
}
