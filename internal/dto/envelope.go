package dto

// Envelope is the uniform response wrapper returned by every endpoint.
// Status is "success" or "error"; Message is set on errors and on mutations,
// Data carries the payload when there is one.
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success wraps a payload in a success envelope.
func Success(data interface{}) Envelope {
	return Envelope{Status: "success", Data: data}
}

// SuccessWithMessage wraps a payload and a human-readable message.
func SuccessWithMessage(message string, data interface{}) Envelope {
	return Envelope{Status: "success", Message: message, Data: data}
}

// Error wraps a human-readable message in an error envelope.
func Error(message string) Envelope {
	return Envelope{Status: "error", Message: message}
}
