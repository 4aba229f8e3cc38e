package api

import "encoding/json"

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// EncodeRequest carries the JSON value to encode
type EncodeRequest struct {
	Value json.RawMessage `json:"value"`
}

// EncodeResponse is the result of an encode call
type EncodeResponse struct {
	Type string `json:"type"`
	Hex  string `json:"hex"`
	Size int    `json:"size"`
}

// DecodeRequest carries hex encoded SCALE bytes
type DecodeRequest struct {
	Hex string `json:"hex"`
	// Partial accepts trailing bytes after the value
	Partial bool `json:"partial,omitempty"`
}

// DecodeResponse is the result of a decode call
type DecodeResponse struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// TypeInfo describes one registered name
type TypeInfo struct {
	Name       string `json:"name"`
	Definition string `json:"definition"`
	Resolved   bool   `json:"resolved"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port int
	Bind string
	// APIKey guards /api/v1 when non-empty
	APIKey string
	// RateLimit is requests per second, 0 disables limiting
	RateLimit float64
	Burst     int
}
