package model

import "encoding/json"

// ErrorObject is the error body returned by the API and by the OAuth server
type ErrorObject struct {
	Message     string `json:"message,omitempty"`
	Description string `json:"description,omitempty"`
	Error       string `json:"error,omitempty"`
}

type errorObjectJSON struct {
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
	Description      string `json:"description"`
	Error            string `json:"error"`
}

// UnmarshalJSON accepts error_description as an alias of message
func (e *ErrorObject) UnmarshalJSON(data []byte) error {
	var raw errorObjectJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Message = raw.Message
	if e.Message == "" {
		e.Message = raw.ErrorDescription
	}
	e.Description = raw.Description
	e.Error = raw.Error
	return nil
}
