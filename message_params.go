package slipstream

import "strings"

// MessageParams holds the parameters extracted from an inbound message path
// by the bound handler's pattern.
type MessageParams map[string]string

// Get returns the value of a parameter by key. The lookup is case-insensitive
// (e.g., 'ID' and 'id' match the same parameter). Returns an empty string if the
// key doesn't exist.
func (p MessageParams) Get(key string) string {
	for k, v := range p {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
