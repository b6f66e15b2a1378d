package google

import (
	"context"

	gmailapi "google.golang.org/api/gmail/v1"

	gmail_domain "github.com/IoTMirror/GoogleWebService/internal/domain/gmail"
	"github.com/IoTMirror/GoogleWebService/internal/pagination"
)

const me = "me"

type gmailRepo struct {
	svc *gmailapi.Service
}

var _ gmail_domain.GmailRepo = (*gmailRepo)(nil)

func NewGmailRepo(svc *gmailapi.Service) gmail_domain.GmailRepo {
	return &gmailRepo{svc: svc}
}

// ListUnreadInbox lists references to messages carrying both INBOX and UNREAD.
func (r *gmailRepo) ListUnreadInbox(ctx context.Context, cursor string, pageSize int64) (pagination.Page[gmail_domain.MessageRef], error) {
	call := r.svc.Users.Messages.List(me).LabelIds("INBOX", "UNREAD").Context(ctx)
	if pageSize > 0 {
		call = call.MaxResults(pageSize)
	}
	if cursor != "" {
		call = call.PageToken(cursor)
	}
	resp, err := call.Do()
	if err != nil {
		return pagination.Page[gmail_domain.MessageRef]{}, Classify(err)
	}

	refs := make([]gmail_domain.MessageRef, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		refs = append(refs, gmail_domain.MessageRef{ID: m.Id, ThreadID: m.ThreadId})
	}
	return pagination.Page[gmail_domain.MessageRef]{Items: refs, NextCursor: resp.NextPageToken}, nil
}

func (r *gmailRepo) GetMetadata(ctx context.Context, messageID string, headers []string) ([]gmail_domain.Header, error) {
	msg, err := r.svc.Users.Messages.Get(me, messageID).
		Format("metadata").
		MetadataHeaders(headers...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, Classify(err)
	}
	if msg.Payload == nil {
		return nil, nil
	}

	out := make([]gmail_domain.Header, 0, len(msg.Payload.Headers))
	for _, h := range msg.Payload.Headers {
		out = append(out, gmail_domain.Header{Name: h.Name, Value: h.Value})
	}
	return out, nil
}
