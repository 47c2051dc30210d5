// Package api defines the JSON bodies shared by every HTTP handler.
package api

// ErrorResponse is the body of every non-2xx response.
// Details maps request fields to validation messages when binding fails.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// Common error messages. Internal failures never expose their cause.
const (
	MsgInternal            = "internal server error"
	MsgInvalidRequest      = "invalid request"
	MsgForbidden           = "forbidden"
	MsgInvalidCredentials  = "invalid email or password"
	MsgEmailAlreadyExists  = "email already exists"
	MsgUserNotFound        = "user not found"
	MsgProductNotFound     = "product not found"
	MsgInvalidProductID    = "invalid product id"
	MsgRateLimitExceeded   = "rate limit exceeded"
	MsgNoFieldsToUpdate    = "no fields provided for update"
	MsgNameAndPriceMissing = "name and price are required"
)
