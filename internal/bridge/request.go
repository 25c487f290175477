package bridge

import (
	"encoding/json"
	"fmt"
)

// Request asks the bridge to run one command.
type Request struct {
	// ID correlates the Response; the dispatcher assigns one when empty.
	ID      string          `json:"id,omitempty"`
	Command string          `json:"command"`
	Args    json.RawMessage `json:"args,omitempty"`
	// Requires is an optional semver constraint on the command's version, e.g. "^1".
	Requires string `json:"requires,omitempty"`
}

// Response is the single result of an invocation. Failures carry only text.
type Response struct {
	ID      string          `json:"id"`
	OK      bool            `json:"ok"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func success(id string, payload any) Response {
	if payload == nil {
		return Response{ID: id, OK: true}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return failure(id, fmt.Errorf("encoding result: %w", err))
	}
	return Response{ID: id, OK: true, Payload: data}
}

func failure(id string, err error) Response {
	return Response{ID: id, OK: false, Error: err.Error()}
}
