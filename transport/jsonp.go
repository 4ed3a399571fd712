package transport

import (
	"bytes"
	"encoding/json"

	"github.com/prebid/aolhtb/errortypes"
)

// UnwrapJSONP strips a JSONP callback wrapper. Plain JSON bodies come back unchanged with an empty callback.
func UnwrapJSONP(body []byte) (callback string, payload []byte, err error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] == '{' || trimmed[0] == '[' {
		return "", trimmed, nil
	}

	trimmed = bytes.TrimSpace(bytes.TrimSuffix(trimmed, []byte(";")))
	open := bytes.IndexByte(trimmed, '(')
	if open <= 0 || trimmed[len(trimmed)-1] != ')' {
		return "", nil, &errortypes.BadServerResponse{
			Message: "response is neither JSON nor a JSONP callback",
		}
	}

	callback = string(bytes.TrimSpace(trimmed[:open]))
	if !validCallback(callback) {
		return "", nil, &errortypes.BadServerResponse{
			Message: "response JSONP callback name is invalid: " + callback,
		}
	}
	payload = bytes.TrimSpace(trimmed[open+1 : len(trimmed)-1])
	if !json.Valid(payload) {
		return "", nil, &errortypes.BadServerResponse{
			Message: "response JSONP callback argument is not JSON",
		}
	}
	return callback, payload, nil
}

func validCallback(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '$', r == '.':
		default:
			return false
		}
	}
	return true
}
