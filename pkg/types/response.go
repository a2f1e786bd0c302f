package types

import json "github.com/goccy/go-json"

// Response is a successful API response: the HTTP status, the server's
// reason phrase and the raw JSON body, left undecoded so callers can
// unmarshal into their own types.
type Response struct {
	StatusCode int
	Message    string
	Data       json.RawMessage
}
