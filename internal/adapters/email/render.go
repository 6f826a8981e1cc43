package email

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))

// RenderMarkdown converts a Markdown body to HTML. Raw HTML in the source is
// dropped by goldmark's default renderer.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// Broadcast builds one message per recipient sharing subject and a rendered body.
func Broadcast(recipients []string, subject, markdownBody string) ([]Message, error) {
	html, err := RenderMarkdown(markdownBody)
	if err != nil {
		return nil, err
	}
	msgs := make([]Message, 0, len(recipients))
	for _, to := range recipients {
		msgs = append(msgs, Message{To: to, Subject: subject, HTML: html})
	}
	return msgs, nil
}

// Broadcaster renders Markdown broadcasts and sends them through a Sender in one batch.
type Broadcaster struct {
	sender Sender
}

// NewBroadcaster wraps sender.
func NewBroadcaster(sender Sender) *Broadcaster {
	return &Broadcaster{sender: sender}
}

// SendBroadcast emails markdownBody to every recipient and returns how many
// messages the provider accepted.
func (b *Broadcaster) SendBroadcast(ctx context.Context, recipients []string, subject, markdownBody string) (int, error) {
	msgs, err := Broadcast(recipients, subject, markdownBody)
	if err != nil {
		return 0, err
	}
	ids, err := b.sender.SendBatch(ctx, msgs)
	return len(ids), err
}
