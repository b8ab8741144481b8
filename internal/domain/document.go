package domain

// Document is the entire persisted state. It is always loaded and saved as a
// single unit; there are no partial or merge semantics. Users and
// VerificationCodes are keyed by username, Sessions by session_id.
type Document struct {
	Users             map[string]User             `json:"users"`
	Sessions          map[string]Session          `json:"sessions"`
	VerificationCodes map[string]VerificationCode `json:"verification_codes"`
}

// NewDocument returns an empty document with all mappings initialized.
func NewDocument() *Document {
	return &Document{
		Users:             make(map[string]User),
		Sessions:          make(map[string]Session),
		VerificationCodes: make(map[string]VerificationCode),
	}
}

// Normalize replaces nil mappings with empty ones so callers can index
// without nil checks after decoding a hand-edited or legacy file.
func (d *Document) Normalize() {
	if d.Users == nil {
		d.Users = make(map[string]User)
	}
	if d.Sessions == nil {
		d.Sessions = make(map[string]Session)
	}
	if d.VerificationCodes == nil {
		d.VerificationCodes = make(map[string]VerificationCode)
	}
}
