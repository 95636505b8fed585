package model

import "time"

// StoredFile represents one file persisted by the local file store.
// LocalPath stays the authoritative location of the bytes; cloud copies are additive.
type StoredFile struct {
	Category     string         `json:"category"`
	OriginalName string         `json:"originalName"`
	StoredName   string         `json:"storedName"`
	LocalPath    string         `json:"localPath"`
	RelativePath string         `json:"relativePath"`
	SizeBytes    int64          `json:"sizeBytes"`
	CreatedAt    time.Time      `json:"createdAt"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// AttachmentSource names the table an attachment reference was read from.
type AttachmentSource string

const (
	AttachmentFromTransaction AttachmentSource = "transaction"
	AttachmentFromDocument    AttachmentSource = "document"
)

// Attachment is a reference from a business row to a file under the upload root.
type Attachment struct {
	Source        AttachmentSource `json:"source"`
	OwnerID       string           `json:"ownerId"`
	TransactionID string           `json:"transactionId,omitempty"`
	Path          string           `json:"path"`
}
