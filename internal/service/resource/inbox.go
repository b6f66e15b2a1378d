package resource

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	gmail_domain "github.com/IoTMirror/GoogleWebService/internal/domain/gmail"
	"github.com/IoTMirror/GoogleWebService/internal/pagination"
)

const inboxPageSize = 100

// FetchInbox returns the metadata headers of up to maxMessages unread inbox messages,
// newest first as listed by Gmail. A maxMessages of zero or less means no cap.
func FetchInbox(ctx context.Context, repo gmail_domain.GmailRepo, maxMessages int) ([]gmail_domain.Message, error) {
	pageSize := int64(inboxPageSize)
	if maxMessages > 0 && maxMessages < inboxPageSize {
		pageSize = int64(maxMessages)
	}

	refs, err := pagination.Collect(ctx, func(ctx context.Context, cursor string) (pagination.Page[gmail_domain.MessageRef], error) {
		return repo.ListUnreadInbox(ctx, cursor, pageSize)
	}, maxMessages)
	if err != nil {
		return nil, err
	}
	if maxMessages > 0 && len(refs) > maxMessages {
		refs = refs[:maxMessages]
	}

	messages := make([]gmail_domain.Message, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, ref := range refs {
		g.Go(func() error {
			headers, err := repo.GetMetadata(gctx, ref.ID, gmail_domain.MetadataHeaders)
			if err != nil {
				return err
			}
			messages[i] = FoldHeaders(headers)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return messages, nil
}

// FoldHeaders keys allowlisted headers by their lower-cased name. A repeated header
// keeps its last value.
func FoldHeaders(headers []gmail_domain.Header) gmail_domain.Message {
	msg := make(gmail_domain.Message, len(gmail_domain.MetadataHeaders))
	for _, h := range headers {
		name := strings.ToLower(h.Name)
		if !allowedHeader(name) {
			continue
		}
		msg[name] = h.Value
	}
	return msg
}

func allowedHeader(lower string) bool {
	for _, h := range gmail_domain.MetadataHeaders {
		if strings.ToLower(h) == lower {
			return true
		}
	}
	return false
}
