package signer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DispatchError is an on-chain submission failure decoded to the runtime's
// module error description.
type DispatchError struct {
	Module string
	Name   string
	Docs   []string
}

func (e *DispatchError) Error() string {
	msg := fmt.Sprintf("dispatch failed: %s.%s", e.Module, e.Name)
	if len(e.Docs) > 0 {
		msg += ": " + strings.Join(e.Docs, " ")
	}
	return msg
}

// UnexpectedDispatchError carries a failure payload that could not be decoded
// to a module error.
type UnexpectedDispatchError struct {
	Raw json.RawMessage
}

func (e *UnexpectedDispatchError) Error() string {
	return fmt.Sprintf("unexpected dispatch error: %s", bytes.TrimSpace(e.Raw))
}

type moduleErrorPayload struct {
	Module string   `json:"module"`
	Name   string   `json:"name"`
	Docs   []string `json:"docs"`
}

// decodeDispatchFailure turns a raw dispatch failure payload into a
// DispatchError when it carries the module/name/docs shape, otherwise into an
// UnexpectedDispatchError wrapping the payload verbatim.
func decodeDispatchFailure(raw json.RawMessage) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return &UnexpectedDispatchError{Raw: json.RawMessage(`null`)}
	}
	var payload moduleErrorPayload
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Module != "" && payload.Name != "" {
		return &DispatchError{Module: payload.Module, Name: payload.Name, Docs: payload.Docs}
	}
	return &UnexpectedDispatchError{Raw: raw}
}
