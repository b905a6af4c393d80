package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrUnauthenticated      = errors.New("not authenticated")
	ErrForbidden            = errors.New("access forbidden")
	ErrSessionClosed        = errors.New("session closed")
	ErrStaffNotFound        = errors.New("staff member not found")
	ErrStaffExists          = errors.New("staff member already exists")
	ErrMessageNotFound      = errors.New("message not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidResetToken    = errors.New("invalid or expired reset token")
)

// FieldErrors maps a JSON field name to a human-readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Merge copies other into fe, keeping messages already present.
func (fe FieldErrors) Merge(other FieldErrors) {
	for k, v := range other {
		if _, ok := fe[k]; !ok {
			fe[k] = v
		}
	}
}

// AsFieldErrors unwraps err into FieldErrors when it carries them.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
