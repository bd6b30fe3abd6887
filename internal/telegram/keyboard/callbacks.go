package keyboard

import (
	"fmt"
	"strings"
)

// Callback actions carried by inline buttons.
const ActionExport = "export"

// CallbackData is an inline button payload of the form "action:value".
type CallbackData struct {
	Action string
	Value  string
}

// ParseCallback splits a button payload into its action and value.
func ParseCallback(data string) (*CallbackData, error) {
	action, value, ok := strings.Cut(data, ":")
	if !ok || action == "" {
		return nil, fmt.Errorf("invalid callback format: %q", data)
	}
	return &CallbackData{Action: action, Value: value}, nil
}

// EncodeCallback builds a button payload. Telegram caps it at 64 bytes.
func EncodeCallback(action, value string) string {
	return action + ":" + value
}
