package session

import (
	"encoding/json"

	"qartelbot/models"
)

// clone deep-copies a session through its JSON form, the same shape the
// Redis store persists.
func clone(s *models.Session) *models.Session {
	b, err := json.Marshal(s)
	if err != nil {
		cp := *s
		return &cp
	}
	var out models.Session
	if err := json.Unmarshal(b, &out); err != nil {
		cp := *s
		return &cp
	}
	return &out
}
