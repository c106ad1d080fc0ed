package domain

// FileAttachment carries inline file content with a chat message.
type FileAttachment struct {
	Filename      string `json:"filename"`
	MimeType      string `json:"mime_type"`
	Size          uint64 `json:"size"`
	ContentBase64 string `json:"content_base64"`
}

// ChatMessage is a single chat entry. RecipientID nil means public;
// public messages sent from the main room are the only ones persisted
// to the shared history.
type ChatMessage struct {
	UserID      string          `json:"user_id"`
	Content     string          `json:"content"`
	RecipientID *string         `json:"recipient_id,omitempty"`
	Timestamp   uint64          `json:"timestamp"`
	Attachment  *FileAttachment `json:"attachment,omitempty"`
}
