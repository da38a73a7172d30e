package http

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StatusCode is the set of statuses this server produces
type StatusCode int

const (
	StatusOK                  StatusCode = 200
	StatusBadRequest          StatusCode = 400
	StatusNotFound            StatusCode = 404
	StatusInternalServerError StatusCode = 500
	StatusNotImplemented      StatusCode = 501
)

// Name returns the status name written on the status line
func (c StatusCode) Name() string {
	switch c {
	case StatusOK:
		return "OK"
	case StatusBadRequest:
		return "BAD_REQUEST"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusInternalServerError:
		return "INTERNAL_SERVER_ERROR"
	case StatusNotImplemented:
		return "NOT_IMPLEMENTED"
	default:
		return "UNKNOWN_CODE_NAME"
	}
}

// Header is a single response header field
type Header struct {
	Name  string
	Value string
}

// Response is what a route handler returns
type Response struct {
	Code    StatusCode
	Message string
	Headers []Header
}

// Envelope pairs a response with the protocol version it is written in
type Envelope struct {
	Response Response
	Version  string
}

// ErrorBody renders {"error": msg}
func ErrorBody(msg string) string {
	data, err := json.Marshal(struct {
		Error string `json:"error"`
	}{Error: msg})
	if err != nil {
		return emptyJSONObject
	}
	return string(data)
}

// ErrorResponse builds a response whose body is ErrorBody(msg)
func ErrorResponse(code StatusCode, msg string) Response {
	return Response{Code: code, Message: ErrorBody(msg)}
}
