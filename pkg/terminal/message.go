package terminal

// MessageType tags a websocket message. The numeric values match the
// frontend console's dispatch table.
type MessageType int

const (
	MessageTypeText    MessageType = 0 // text output
	MessageTypeClear   MessageType = 1 // clear screen
	MessageTypeSession MessageType = 2 // session id and token handover
	MessageTypeKey     MessageType = 3 // key event from the client
	MessageTypeWidth   MessageType = 4 // screen width change
	MessageTypeLocate  MessageType = 5 // cursor position update
	MessageTypeControl MessageType = 6 // input enable/disable
	MessageTypeError   MessageType = 7 // error report to the client
)

// Message is the websocket frame in both directions.
type Message struct {
	Type    MessageType `json:"type"`
	Content string      `json:"content,omitempty"`
	// text output without an implicit line break
	NoNewline bool `json:"noNewline,omitempty"`

	// session handover
	SessionID string `json:"sessionId,omitempty"`
	Token     string `json:"token,omitempty"`

	// key events: either a literal character in Content or a named key
	Key string `json:"key,omitempty"`

	// screen geometry
	Width int `json:"width,omitempty"`
	Col   int `json:"col,omitempty"`
	Row   int `json:"row,omitempty"`

	// input enable for MessageTypeControl
	InputEnabled *bool `json:"inputEnabled,omitempty"`
}
