// Package line holds the LINE Messaging API wire types and the outbound
// client used to reply to or push messages at a conversation.
package line

import "time"

// EventType discriminates webhook events.
type EventType string

const (
	EventMessage      EventType = "message"
	EventFollow       EventType = "follow"
	EventUnfollow     EventType = "unfollow"
	EventJoin         EventType = "join"
	EventLeave        EventType = "leave"
	EventMemberJoined EventType = "memberJoined"
	EventMemberLeft   EventType = "memberLeft"
	EventPostback     EventType = "postback"
	EventBeacon       EventType = "beacon"
	EventAccountLink  EventType = "accountLink"
	EventUnsend       EventType = "unsend"
)

// MessageType discriminates the message carried by a message event.
type MessageType string

const (
	MessageText     MessageType = "text"
	MessageImage    MessageType = "image"
	MessageVideo    MessageType = "video"
	MessageAudio    MessageType = "audio"
	MessageFile     MessageType = "file"
	MessageLocation MessageType = "location"
	MessageSticker  MessageType = "sticker"
)

// SourceType identifies where an event originated.
type SourceType string

const (
	SourceUser  SourceType = "user"
	SourceGroup SourceType = "group"
	SourceRoom  SourceType = "room"
)

// Source identifies the user, group, or room an event came from.
type Source struct {
	Type    SourceType `json:"type"`
	UserID  string     `json:"userId,omitempty"`
	GroupID string     `json:"groupId,omitempty"`
	RoomID  string     `json:"roomId,omitempty"`
}

// DeliveryContext flags events the platform is redelivering after an
// earlier failed delivery attempt.
type DeliveryContext struct {
	IsRedelivery bool `json:"isRedelivery"`
}

// Event is one webhook event. The Type field selects which of the optional
// payload pointers is populated; events are never mutated after decoding.
type Event struct {
	Type            EventType        `json:"type"`
	Mode            string           `json:"mode,omitempty"`
	Timestamp       int64            `json:"timestamp,omitempty"` // milliseconds since epoch
	Source          Source           `json:"source,omitempty"`
	WebhookEventID  string           `json:"webhookEventId,omitempty"`
	DeliveryContext *DeliveryContext `json:"deliveryContext,omitempty"`
	ReplyToken      string           `json:"replyToken,omitempty"`

	Message  *Message     `json:"message,omitempty"`
	Postback *Postback    `json:"postback,omitempty"`
	Beacon   *Beacon      `json:"beacon,omitempty"`
	Joined   *Members     `json:"joined,omitempty"`
	Left     *Members     `json:"left,omitempty"`
	Unsend   *Unsend      `json:"unsend,omitempty"`
	Link     *AccountLink `json:"link,omitempty"`
}

// Time converts the millisecond event timestamp.
func (e Event) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Message is the inbound message of a message event. The wire format is
// flat: which fields are meaningful depends on Type.
type Message struct {
	ID   string      `json:"id"`
	Type MessageType `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// file
	FileName string `json:"fileName,omitempty"`
	FileSize int64  `json:"fileSize,omitempty"`

	// location
	Title     string  `json:"title,omitempty"`
	Address   string  `json:"address,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`

	// sticker
	PackageID string `json:"packageId,omitempty"`
	StickerID string `json:"stickerId,omitempty"`

	// audio / video, milliseconds
	Duration int64 `json:"duration,omitempty"`

	ContentProvider *ContentProvider `json:"contentProvider,omitempty"`
}

// ContentProvider says where media content is hosted.
type ContentProvider struct {
	Type               string `json:"type"`
	OriginalContentURL string `json:"originalContentUrl,omitempty"`
	PreviewImageURL    string `json:"previewImageUrl,omitempty"`
}

// Postback carries the data attached to a tapped button or action.
type Postback struct {
	Data   string            `json:"data"`
	Params map[string]string `json:"params,omitempty"`
}

// Beacon describes a beacon enter/leave/banner event.
type Beacon struct {
	Hwid string `json:"hwid"`
	Type string `json:"type"`
	DM   string `json:"dm,omitempty"`
}

// Members lists the users of a memberJoined or memberLeft event.
type Members struct {
	Members []Source `json:"members"`
}

// Unsend identifies a message the user retracted.
type Unsend struct {
	MessageID string `json:"messageId"`
}

// AccountLink reports the outcome of an account-link flow.
type AccountLink struct {
	Result string `json:"result"`
	Nonce  string `json:"nonce,omitempty"`
}
