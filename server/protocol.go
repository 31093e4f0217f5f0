package main

import "encoding/json"

// Client -> Server message types
const (
	MsgFormat = "format" // pick json or msgpack frames
)

// Server -> Client message types
const (
	MsgWelcome  = "welcome"
	MsgState    = "state"
	MsgEvent    = "event"
	MsgReloaded = "reloaded"
	MsgError    = "error"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t" msgpack:"t"`
	Data interface{} `json:"d,omitempty" msgpack:"d,omitempty"`
}

// InEnvelope is used for incoming messages. D stays raw until the type is known.
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// FormatMsg switches a spectator between text JSON and binary msgpack
// frames.
type FormatMsg struct {
	Binary bool `json:"bin"`
}

// WelcomeMsg is sent when a spectator connects and after a map reload.
// Sizes are in pixels.
type WelcomeMsg struct {
	Session string `json:"sid" msgpack:"sid"`
	Map     string `json:"map" msgpack:"map"`
	Engine  string `json:"engine" msgpack:"engine"`
	BuildID string `json:"build" msgpack:"build"`
	Width   int    `json:"w" msgpack:"w"`
	Height  int    `json:"h" msgpack:"h"`
}

// ShipState is broadcast per player each frame. Positions are pixels.
type ShipState struct {
	ID     int     `json:"id" msgpack:"id"`
	Name   string  `json:"n" msgpack:"n"`
	Team   int     `json:"tm" msgpack:"tm"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	VX     float64 `json:"vx" msgpack:"vx"`
	VY     float64 `json:"vy" msgpack:"vy"`
	Dir    int     `json:"r" msgpack:"r"`
	Score  float64 `json:"sc" msgpack:"sc"`
	Alive  bool    `json:"a" msgpack:"a"`
	Warped bool    `json:"w,omitempty" msgpack:"w,omitempty"`
}

// ObjectState is broadcast per live object
type ObjectState struct {
	ID    int     `json:"id" msgpack:"id"`
	Type  string  `json:"k" msgpack:"k"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	Owner int     `json:"o" msgpack:"o"`
}

// StructureState reports a target or cannon.
type StructureState struct {
	Index int  `json:"i" msgpack:"i"`
	Team  int  `json:"tm" msgpack:"tm"`
	Alive bool `json:"a" msgpack:"a"`
	// Damage is left for targets, fuel-scaled.
	Damage int64 `json:"dmg,omitempty" msgpack:"dmg,omitempty"`
}

// FrameState is the full state broadcast
type FrameState struct {
	Tick    uint64           `json:"tick" msgpack:"tick"`
	Frame   int64            `json:"f" msgpack:"f"`
	Ships   []ShipState      `json:"s" msgpack:"s"`
	Objects []ObjectState    `json:"o" msgpack:"o"`
	Targets []StructureState `json:"tg" msgpack:"tg"`
	Cannons []StructureState `json:"cn" msgpack:"cn"`
}

// EventMsg mirrors what the resolver told the host: a score, a kill, a
// message or a sound.
type EventMsg struct {
	Kind   string  `json:"k" msgpack:"k"`
	Frame  int64   `json:"f" msgpack:"f"`
	Player string  `json:"p,omitempty" msgpack:"p,omitempty"`
	Team   int     `json:"tm,omitempty" msgpack:"tm,omitempty"`
	Delta  float64 `json:"d,omitempty" msgpack:"d,omitempty"`
	Text   string  `json:"txt,omitempty" msgpack:"txt,omitempty"`
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg" msgpack:"msg"`
}

// LoginMsg is the admin login request body.
type LoginMsg struct {
	Password string `json:"password"`
}

// TokenMsg is the admin login response body.
type TokenMsg struct {
	Token string `json:"token"`
}

// ReloadMsg asks for a new map. Empty fields keep the current value.
type ReloadMsg struct {
	Map    string `json:"map"`
	Engine string `json:"engine"`
}
