package handler

import "time"

// Response is the envelope for JSON status responses.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// ErrorBody is the body of every error response. It never carries the
// internal cause of a failure.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthStatus is the data of /-/health and /-/ready.
type HealthStatus struct {
	Status   string `json:"status"`
	Time     string `json:"time"`
	Version  string `json:"version,omitempty"`
	KeyPairs int    `json:"key_pairs,omitempty"`
}
