// internal/model/contact.go
package model

// Gender of a contact, used to pick between the male/female message templates.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = ""
)

// Attachment is a file queued for delivery alongside the message text.
type Attachment struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// BlastContact is one recipient as submitted by the caller.
type BlastContact struct {
	Phone  string `json:"phone"`
	Name   string `json:"name"`
	Gender Gender `json:"gender,omitempty"`
}

// ContactEntry is one queued recipient with its rendered payload.
// Entries are created when a batch is submitted and live only for the
// duration of that operation.
type ContactEntry struct {
	ID          int          `json:"id"`
	Phone       string       `json:"phone"`
	Name        string       `json:"name"`
	Gender      Gender       `json:"gender,omitempty"`
	Message     string       `json:"message"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Admitted    bool         `json:"admitted"`
	Processed   bool         `json:"processed"`
}
