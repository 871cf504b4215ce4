package model

import "time"

const (
	// maskRun is the fixed-length run shown in place of all but the last
	// visibleSuffix characters of a secret.
	maskRun       = "••••••••••••••••••••"
	visibleSuffix = 4
)

// APIKey is a single labeled secret entry. The JSON names match the blob
// layout written by earlier browser-only releases so existing blobs load as-is.
type APIKey struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Secret     string     `json:"key"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt"`
}

// Masked returns the presentation form of the key's secret.
func (k APIKey) Masked() string {
	return MaskSecret(k.Secret)
}

// MaskSecret hides all but the last four characters of secret behind a
// fixed-length mask so the rendered width never leaks the secret's length.
// Secrets shorter than four characters are masked entirely.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	runes := []rune(secret)
	if len(runes) < visibleSuffix {
		return maskRun
	}
	return maskRun + string(runes[len(runes)-visibleSuffix:])
}

// FormatDate renders t as a short calendar date, or an em dash when absent.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "—"
	}
	return t.Local().Format("Jan 2, 2006")
}
