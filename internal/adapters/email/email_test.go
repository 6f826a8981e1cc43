package email

import (
	"context"
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	html, err := RenderMarkdown("**Practice** moved to _Room 4_.\n\n<script>alert(1)</script>")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "<strong>Practice</strong>") || !strings.Contains(html, "<em>Room 4</em>") {
		t.Errorf("html = %q", html)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("raw html should be omitted: %q", html)
	}
}

func TestBroadcast_OneMessagePerRecipient(t *testing.T) {
	msgs, err := Broadcast([]string{"a@x.com", "b@x.com"}, "Chess Club: Finals", "See you *Friday*")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || msgs[0].To != "a@x.com" || msgs[1].To != "b@x.com" {
		t.Fatalf("msgs = %+v", msgs)
	}
	if msgs[0].HTML != msgs[1].HTML || !strings.Contains(msgs[0].HTML, "<em>Friday</em>") {
		t.Errorf("html = %q", msgs[0].HTML)
	}
}

func TestNoopSender_RecordsMessages(t *testing.T) {
	s := NewNoopSender()
	ids, err := s.SendBatch(context.Background(), []Message{{To: "a@x.com"}, {To: "b@x.com"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] == ids[1] {
		t.Errorf("ids = %v", ids)
	}
	more, _ := s.SendBatch(context.Background(), []Message{{To: "c@x.com"}})
	if more[0] == ids[0] || more[0] == ids[1] {
		t.Errorf("ids repeat across batches: %v %v", ids, more)
	}
	if got := s.Sent(); len(got) != 3 || got[2].To != "c@x.com" {
		t.Errorf("Sent() = %+v", got)
	}
}

func TestBroadcaster_SendsRenderedBatch(t *testing.T) {
	noop := NewNoopSender()
	n, err := NewBroadcaster(noop).SendBroadcast(context.Background(), []string{"a@x.com", "b@x.com"}, "Update: Finals", "Bring a **pen**")
	if err != nil {
		t.Fatal(err)
	}
	sent := noop.Sent()
	if n != 2 || len(sent) != 2 || sent[1].Subject != "Update: Finals" || !strings.Contains(sent[1].HTML, "<strong>pen</strong>") {
		t.Errorf("sent %d: %+v", n, sent)
	}
}

var _ Sender = (*ResendSender)(nil)
var _ Sender = (*NoopSender)(nil)
