package models

import "time"

// WidgetSession identifies one browser's widget instance.
type WidgetSession struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// NewWidgetSession starts a session that expires ttl after its last activity.
func NewWidgetSession(id string, ttl time.Duration, now time.Time) *WidgetSession {
	return &WidgetSession{
		ID:           id,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
		LastActivity: now,
	}
}

// IsExpired checks if session has expired
func (s *WidgetSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// UpdateActivity updates the last activity timestamp and slides the expiry.
func (s *WidgetSession) UpdateActivity(ttl time.Duration, now time.Time) {
	s.LastActivity = now
	s.ExpiresAt = now.Add(ttl)
}
