package model

// DecodeError records an input line that could not be read as a CallTrace.
type DecodeError struct {
	Line  int    `json:"line"`
	Input string `json:"input,omitempty"`
	Error string `json:"error"`
}
