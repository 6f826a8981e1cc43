package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// resendBatchLimit is the most emails Resend accepts per batch call.
const resendBatchLimit = 100

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a ResendSender.
// PRE: apiKey is a valid Resend API key; from is a valid sender address
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

// SendBatch queues msgs in chunks of resendBatchLimit.
// POST: on error, IDs of the chunks already accepted are returned
func (s *ResendSender) SendBatch(ctx context.Context, msgs []Message) ([]string, error) {
	var ids []string
	for start := 0; start < len(msgs); start += resendBatchLimit {
		end := min(start+resendBatchLimit, len(msgs))

		params := make([]*resend.SendEmailRequest, 0, end-start)
		for _, m := range msgs[start:end] {
			from := m.From
			if from == "" {
				from = s.from
			}
			params = append(params, &resend.SendEmailRequest{
				From:    from,
				To:      []string{m.To},
				Subject: m.Subject,
				Html:    m.HTML,
			})
		}

		resp, err := s.client.Batch.SendWithContext(ctx, params)
		if err != nil {
			slog.Error("email_event", "event", "resend_batch_failed", "error", err, "batch_size", len(params))
			return ids, fmt.Errorf("resend batch send failed: %w", err)
		}
		for _, item := range resp.Data {
			ids = append(ids, item.Id)
		}
		slog.Info("email_event", "event", "resend_batch_sent", "count", len(params))
	}
	return ids, nil
}
