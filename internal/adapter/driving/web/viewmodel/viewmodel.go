// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

import "strconv"

// DashboardViewModel holds everything the API keys page renders.
type DashboardViewModel struct {
	CSRFToken     string
	Notice        string
	NoticeDelayMS int64
	CreateURL     string
	Keys          []KeyRowViewModel
}

// HasKeys reports whether the table has at least one row.
func (d DashboardViewModel) HasKeys() bool {
	return len(d.Keys) > 0
}

// NoticeDelay returns the notice auto-clear delay in milliseconds as an
// attribute value.
func (d DashboardViewModel) NoticeDelay() string {
	return strconv.FormatInt(d.NoticeDelayMS, 10)
}

// KeyRowViewModel holds presentation-ready data for one table row.
type KeyRowViewModel struct {
	ID            string
	Label         string
	DisplaySecret string // full secret when revealed, masked otherwise
	CreatedAt     string
	LastUsedAt    string
	Revealed      bool

	// Edit mode. EditLabel/EditSecret carry the draft values.
	Editing    bool
	EditLabel  string
	EditSecret string

	// POST targets for row actions.
	RevealURL     string
	CopyURL       string
	EditURL       string
	SaveURL       string
	CancelURL     string
	RegenerateURL string
	DeleteURL     string
}

// RevealLabel returns the caption of the reveal toggle.
func (r KeyRowViewModel) RevealLabel() string {
	if r.Revealed {
		return "Hide"
	}
	return "Reveal"
}

// EditFormID returns the id of the form the row's edit inputs submit with.
func (r KeyRowViewModel) EditFormID() string {
	return "edit-" + r.ID
}

// EditSecretID returns the id of the row's secret edit input.
func (r KeyRowViewModel) EditSecretID() string {
	return "edit-secret-" + r.ID
}

// ConfirmViewModel holds the data for a confirmation dialog page.
type ConfirmViewModel struct {
	CSRFToken    string
	Message      string
	ActionURL    string
	ConfirmLabel string
	Destructive  bool
	CancelURL    string
}

// ButtonVariant returns the style variant of the confirm button.
func (c ConfirmViewModel) ButtonVariant() string {
	if c.Destructive {
		return "destructive"
	}
	return "primary"
}
