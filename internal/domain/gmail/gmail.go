package gmail

import (
	"context"

	"github.com/IoTMirror/GoogleWebService/internal/pagination"
)

// MetadataHeaders is the allowlist of headers folded into a Message.
var MetadataHeaders = []string{"From", "Subject", "Date", "To"}

// Message maps lower-cased header names to their values.
type Message map[string]string

type MessageRef struct {
	ID       string
	ThreadID string
}

type Header struct {
	Name  string
	Value string
}

type GmailRepo interface {
	ListUnreadInbox(ctx context.Context, cursor string, pageSize int64) (pagination.Page[MessageRef], error)
	GetMetadata(ctx context.Context, messageID string, headers []string) ([]Header, error)
}
