package types

import "time"

// Toast represents a notification message
type Toast struct {
	Level   ToastLevel
	Message string
	Expires time.Time
}

// ToastLevel indicates the severity of a toast
type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastWarning
	ToastError
)

// NewToast creates a toast that expires after ttl
func NewToast(level ToastLevel, message string, ttl time.Duration) Toast {
	return Toast{Level: level, Message: message, Expires: time.Now().Add(ttl)}
}

// Expired reports whether the toast should no longer be shown at now
func (t Toast) Expired(now time.Time) bool {
	return !t.Expires.After(now)
}
