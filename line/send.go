package line

// SendMessage is implemented by every outbound message payload accepted by
// Reply and Push. The set is closed; use the New* constructors so the wire
// type tag is always populated.
type SendMessage interface {
	sendMessage()
}

// TextMessage is an outbound text message.
type TextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (TextMessage) sendMessage() {}

// NewTextMessage builds a text message.
func NewTextMessage(text string) TextMessage {
	return TextMessage{Type: "text", Text: text}
}

// StickerMessage is an outbound sticker message.
type StickerMessage struct {
	Type      string `json:"type"`
	PackageID string `json:"packageId"`
	StickerID string `json:"stickerId"`
}

func (StickerMessage) sendMessage() {}

// NewStickerMessage builds a sticker message.
func NewStickerMessage(packageID, stickerID string) StickerMessage {
	return StickerMessage{Type: "sticker", PackageID: packageID, StickerID: stickerID}
}

// ImageMessage is an outbound image message. Both URLs must be HTTPS.
type ImageMessage struct {
	Type               string `json:"type"`
	OriginalContentURL string `json:"originalContentUrl"`
	PreviewImageURL    string `json:"previewImageUrl"`
}

func (ImageMessage) sendMessage() {}

// NewImageMessage builds an image message.
func NewImageMessage(originalContentURL, previewImageURL string) ImageMessage {
	return ImageMessage{Type: "image", OriginalContentURL: originalContentURL, PreviewImageURL: previewImageURL}
}

// VideoMessage is an outbound video message.
type VideoMessage struct {
	Type               string `json:"type"`
	OriginalContentURL string `json:"originalContentUrl"`
	PreviewImageURL    string `json:"previewImageUrl"`
}

func (VideoMessage) sendMessage() {}

// NewVideoMessage builds a video message.
func NewVideoMessage(originalContentURL, previewImageURL string) VideoMessage {
	return VideoMessage{Type: "video", OriginalContentURL: originalContentURL, PreviewImageURL: previewImageURL}
}

// AudioMessage is an outbound audio message with its duration in
// milliseconds.
type AudioMessage struct {
	Type               string `json:"type"`
	OriginalContentURL string `json:"originalContentUrl"`
	Duration           int64  `json:"duration"`
}

func (AudioMessage) sendMessage() {}

// NewAudioMessage builds an audio message.
func NewAudioMessage(originalContentURL string, duration int64) AudioMessage {
	return AudioMessage{Type: "audio", OriginalContentURL: originalContentURL, Duration: duration}
}

// LocationMessage is an outbound location message.
type LocationMessage struct {
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (LocationMessage) sendMessage() {}

// NewLocationMessage builds a location message.
func NewLocationMessage(title, address string, latitude, longitude float64) LocationMessage {
	return LocationMessage{Type: "location", Title: title, Address: address, Latitude: latitude, Longitude: longitude}
}
