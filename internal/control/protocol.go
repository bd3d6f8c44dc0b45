// Package control carries pointer input and knob state over a websocket.
package control

import "github.com/frudas24/knobicon/internal/knob"

// Client message types.
const (
	MsgDown         = "down"
	MsgMove         = "move"
	MsgUp           = "up"
	MsgRotate       = "rotate"
	MsgInputEnabled = "inputEnabled"
)

// Server message types.
const (
	MsgState   = "state"
	MsgPercent = "percent"
)

// Message is a control websocket payload from the client.
type Message struct {
	T       string    `json:"t"`
	X       float64   `json:"x,omitempty"`
	Y       float64   `json:"y,omitempty"`
	Box     *knob.Box `json:"box,omitempty"`
	Angle   *float64  `json:"angle,omitempty"`
	Enabled *bool     `json:"enabled,omitempty"`
}

// box returns the laid-out box, or a zero box that maps window pixels one to one.
func (m Message) box() knob.Box {
	if m.Box == nil {
		return knob.Box{}
	}
	return *m.Box
}

// StateMessage reports the knob after a handled client message.
type StateMessage struct {
	T            string  `json:"t"`
	Percent      float64 `json:"percent"`
	Angle        float64 `json:"angle"`
	Dragging     bool    `json:"dragging"`
	Consumed     bool    `json:"consumed"`
	InputEnabled bool    `json:"inputEnabled"`
}

// PercentMessage is pushed after every accepted rotation.
type PercentMessage struct {
	T       string  `json:"t"`
	Percent float64 `json:"percent"`
}
