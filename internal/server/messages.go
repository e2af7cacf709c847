package server

import (
	"encoding/json"
	"time"
)

// MessageType identifies the kind of WebSocket message.
type MessageType string

const (
	// Client -> Server
	TypeHello      MessageType = "hello"
	TypeSetup      MessageType = "setup"
	TypeShot       MessageType = "shot"
	TypePeek       MessageType = "peek"
	TypeLock       MessageType = "lock"
	TypeResolve    MessageType = "resolve"
	TypeCancelPeek MessageType = "cancel_peek"
	TypeReset      MessageType = "reset"
	TypeLanguage   MessageType = "language"

	// Server -> Client
	TypeWelcome MessageType = "welcome"
	TypeState   MessageType = "state"
	TypeError   MessageType = "error"
)

// Message is the WebSocket envelope.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage wraps a payload in an envelope with the current timestamp.
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client -> Server payloads

// HelloData introduces the client. UserID may be empty on first
// contact; the server assigns one and returns it in WelcomeData.
type HelloData struct {
	UserID string `json:"userId,omitempty"`
	Locale string `json:"locale,omitempty"`
}

// SetupData carries one or both declared counts.
type SetupData struct {
	Blank *int `json:"blank,omitempty"`
	Live  *int `json:"live,omitempty"`
}

// ShotData declares the type of the shot just fired.
type ShotData struct {
	Outcome string `json:"outcome"`
}

// LockData picks the shot to peek at.
type LockData struct {
	Shot int `json:"shot"`
}

// ResolveData reveals what the peek showed.
type ResolveData struct {
	Outcome string `json:"outcome"`
}

// LanguageData switches the session language.
type LanguageData struct {
	Language string `json:"language"`
}

// Server -> Client payloads

// WelcomeData confirms the session identity and language.
type WelcomeData struct {
	UserID   string `json:"userId"`
	Language string `json:"language"`
	Text     string `json:"text"`
}

// ShotInfo is one entry of the per-shot display sequence.
type ShotInfo struct {
	Index   int    `json:"index"`
	State   string `json:"state"`
	Outcome string `json:"outcome,omitempty"`
	Current bool   `json:"current,omitempty"`
}

// StateData is the rendered session view sent after every accepted
// operation.
type StateData struct {
	Phase       string     `json:"phase"`
	ProbBlank   float64    `json:"probBlank"`
	ProbLive    float64    `json:"probLive"`
	Shots       []ShotInfo `json:"shots,omitempty"`
	CurrentShot int        `json:"currentShot,omitempty"`
	PendingShot int        `json:"pendingShot,omitempty"`
	Completed   bool       `json:"completed"`
	SetupBlank  int        `json:"setupBlank,omitempty"`
	SetupLive   int        `json:"setupLive,omitempty"`
	Text        string     `json:"text,omitempty"`
}

// ErrorData reports a rejected operation: a stable machine code plus
// text already localized to the session language.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
