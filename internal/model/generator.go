package model

import "github.com/getpassword/getpassword-go/internal/session"

// GenerateRequest represents a one-shot password generation request.
// Pointer fields distinguish a missing option (nil -> default) from an explicit
// zero or false.
type GenerateRequest struct {
	Length  *int  `json:"length"`
	Numbers *bool `json:"numbers"`
	Symbols *bool `json:"symbols"`
}

// GenerateResponse represents a password generation response.
type GenerateResponse struct {
	Password     string `json:"password"`
	Length       int    `json:"length"`
	AlphabetSize int    `json:"alphabet_size"`
}

// OptionsRequest is a partial config update; nil fields keep their current value.
type OptionsRequest struct {
	Length  *int  `json:"length"`
	Numbers *bool `json:"numbers"`
	Symbols *bool `json:"symbols"`
}

// SessionResponse is returned when a session is created.
type SessionResponse struct {
	Token string        `json:"token"`
	State session.State `json:"state"`
}

// CopyResponse reports the outcome of a copy. Copied is false when the
// clipboard refused the write; the password is still valid.
type CopyResponse struct {
	Copied   bool   `json:"copied"`
	Selected bool   `json:"selected"`
	Error    string `json:"error,omitempty"`
}
