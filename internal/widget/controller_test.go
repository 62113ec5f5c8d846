package widget

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"

	"propertybot/internal/models"
)

type stubSender struct {
	mu       sync.Mutex
	resp     *models.ChatResponse
	err      error
	messages []string
	observe  func()
}

func (s *stubSender) Send(ctx context.Context, message string) (*models.ChatResponse, error) {
	s.mu.Lock()
	s.messages = append(s.messages, message)
	s.mu.Unlock()
	if s.observe != nil {
		s.observe()
	}
	return s.resp, s.err
}

func (s *stubSender) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

type recordingHost struct {
	visible  []bool
	focused  int
	cleared  int
	appended []Entry
	removed  []EntryID
}

func (h *recordingHost) SetPanelVisible(v bool)  { h.visible = append(h.visible, v) }
func (h *recordingHost) FocusInput()             { h.focused++ }
func (h *recordingHost) ClearInput()             { h.cleared++ }
func (h *recordingHost) EntryAppended(e Entry)   { h.appended = append(h.appended, e) }
func (h *recordingHost) EntryRemoved(id EntryID) { h.removed = append(h.removed, id) }

func TestSubmitMessage_IgnoresBlankInput(t *testing.T) {
	inputs := []string{"", " ", "\t\n", "   \r\n  "}

	for _, in := range inputs {
		sender := &stubSender{resp: &models.ChatResponse{Reply: "unused"}}
		host := &recordingHost{}
		c := New(sender, WithHost(host))

		c.SubmitMessage(context.Background(), in)

		if c.Transcript().Len() != 0 {
			t.Fatalf("input %q: expected empty transcript, got %d entries", in, c.Transcript().Len())
		}
		if sender.calls() != 0 {
			t.Fatalf("input %q: expected no request, got %d", in, sender.calls())
		}
		if host.cleared != 0 {
			t.Fatalf("input %q: input should not be cleared", in)
		}
	}
}

func TestSubmitMessage_TrimsAndSendsOnce(t *testing.T) {
	sender := &stubSender{resp: &models.ChatResponse{Reply: "ok", Properties: []models.PropertyResult{}}}
	host := &recordingHost{}
	c := New(sender, WithHost(host))

	c.SubmitMessage(context.Background(), "  3 bedroom flat in Lekki  ")

	if len(sender.messages) != 1 || sender.messages[0] != "3 bedroom flat in Lekki" {
		t.Fatalf("expected one trimmed request, got %q", sender.messages)
	}

	entries := c.Transcript().Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Kind != KindUser || !entries[0].Message.IsUser || entries[0].Message.Text != "3 bedroom flat in Lekki" {
		t.Fatalf("unexpected user entry: %+v", entries[0])
	}
	if host.cleared != 1 {
		t.Fatalf("expected input cleared once, got %d", host.cleared)
	}
}

func TestSubmitMessage_PlaceholderVisibleWhileWaiting(t *testing.T) {
	var c *Controller
	var during []Entry
	var pending int
	sender := &stubSender{resp: &models.ChatResponse{Reply: "done"}}
	sender.observe = func() {
		during = c.Transcript().Entries()
		pending = c.Pending()
	}
	c = New(sender)

	c.SubmitMessage(context.Background(), "hello")

	if len(during) != 2 {
		t.Fatalf("expected user entry and placeholder in flight, got %d entries", len(during))
	}
	if during[1].Kind != KindPlaceholder || during[1].Message.Text != SearchingText {
		t.Fatalf("expected searching placeholder, got %+v", during[1])
	}
	if pending != 1 {
		t.Fatalf("expected 1 pending send, got %d", pending)
	}
	if c.Pending() != 0 {
		t.Fatalf("expected no pending sends after completion, got %d", c.Pending())
	}
}

func TestSubmitMessage_SuccessAppendsReplyAndCards(t *testing.T) {
	props := []models.PropertyResult{
		{Title: "Duplex in Lekki", Price: 1500000},
		{Title: "Flat in Yaba", Price: 800000},
		{Title: "Terrace in Ikoyi", Price: 4200000},
	}
	sender := &stubSender{resp: &models.ChatResponse{Reply: "Here are 3 properties", Properties: props}}
	host := &recordingHost{}
	c := New(sender, WithHost(host))

	c.SubmitMessage(context.Background(), "lekki")

	entries := c.Transcript().Entries()
	// user entry + reply + one card per property
	if len(entries) != 1+1+len(props) {
		t.Fatalf("expected %d entries, got %d", 2+len(props), len(entries))
	}
	for _, e := range entries {
		if e.Kind == KindPlaceholder {
			t.Fatalf("placeholder should be removed")
		}
	}
	if entries[1].Kind != KindBot || entries[1].Message.Text != "Here are 3 properties" {
		t.Fatalf("unexpected reply entry: %+v", entries[1])
	}
	for i, p := range props {
		e := entries[2+i]
		if e.Kind != KindCard || e.Card == nil || e.Card.Title != p.Title {
			t.Fatalf("card %d out of order: %+v", i, e)
		}
	}
	if len(host.removed) != 1 {
		t.Fatalf("expected placeholder removal notified once, got %d", len(host.removed))
	}
}

func TestSubmitMessage_EmptyResultList(t *testing.T) {
	sender := &stubSender{resp: &models.ChatResponse{Reply: "Here are some options", Properties: []models.PropertyResult{}}}
	c := New(sender)

	c.SubmitMessage(context.Background(), "anything")

	entries := c.Transcript().Entries()
	if len(entries) != 2 {
		t.Fatalf("expected user entry and one bot entry, got %d", len(entries))
	}
	if entries[1].Kind != KindBot || entries[1].Message.Text != "Here are some options" {
		t.Fatalf("unexpected bot entry: %+v", entries[1])
	}
}

func TestSubmitMessage_FailureAppendsFixedError(t *testing.T) {
	var hooked error
	sender := &stubSender{err: errors.New("connection refused")}
	c := New(sender, WithErrorHook(func(err error) { hooked = err }))

	c.SubmitMessage(context.Background(), "lekki")

	entries := c.Transcript().Entries()
	if len(entries) != 2 {
		t.Fatalf("expected user entry and error entry, got %d", len(entries))
	}
	last, _ := c.Transcript().Last()
	if last.Kind != KindBot || last.Message.Text != ErrorText {
		t.Fatalf("expected fixed error entry, got %+v", last)
	}
	if hooked == nil {
		t.Fatalf("expected error hook to receive the cause")
	}
}

func TestSubmitMessage_NilResponseIsFailure(t *testing.T) {
	c := New(&stubSender{})

	c.SubmitMessage(context.Background(), "lekki")

	last, _ := c.Transcript().Last()
	if last.Message.Text != ErrorText {
		t.Fatalf("expected error entry for nil response, got %+v", last)
	}
}

func TestSubmitMessage_ConcurrentSendsKeepOwnPlaceholders(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	sender := &stubSender{resp: &models.ChatResponse{Reply: "r"}}
	sender.observe = func() {
		started <- struct{}{}
		<-release
	}
	c := New(sender)

	var wg sync.WaitGroup
	for _, msg := range []string{"one", "two"} {
		wg.Add(1)
		go func(m string) {
			defer wg.Done()
			c.SubmitMessage(context.Background(), m)
		}(msg)
	}
	<-started
	<-started
	if c.Pending() != 2 {
		t.Fatalf("expected 2 pending sends, got %d", c.Pending())
	}
	close(release)
	wg.Wait()

	users, bots := 0, 0
	for _, e := range c.Transcript().Entries() {
		switch e.Kind {
		case KindUser:
			users++
		case KindBot:
			bots++
		case KindPlaceholder:
			t.Fatalf("placeholder left behind: %+v", e)
		}
	}
	if users != 2 || bots != 2 {
		t.Fatalf("expected 2 user and 2 bot entries, got %d and %d", users, bots)
	}
}

func TestPanel_OpenClose(t *testing.T) {
	host := &recordingHost{}
	c := New(&stubSender{}, WithHost(host))

	c.Open()
	c.Open()
	if !c.Visible() {
		t.Fatalf("expected panel visible after Open")
	}
	if len(host.visible) != 1 || !host.visible[0] {
		t.Fatalf("expected a single show transition, got %v", host.visible)
	}
	if host.focused != 2 {
		t.Fatalf("expected input focused on each Open, got %d", host.focused)
	}

	c.Close()
	c.Close()
	if c.Visible() {
		t.Fatalf("expected panel hidden after Close")
	}
	if len(host.visible) != 2 || host.visible[1] {
		t.Fatalf("expected a single hide transition, got %v", host.visible)
	}
}

func TestPanel_OutsideClickCloses(t *testing.T) {
	bounds := image.Rect(100, 100, 400, 600)
	c := New(&stubSender{}, WithPanelBounds(bounds))

	c.Open()
	c.Click(image.Pt(200, 300))
	if !c.Visible() {
		t.Fatalf("click inside the panel should not close it")
	}

	c.Click(image.Pt(10, 10))
	if c.Visible() {
		t.Fatalf("click outside the panel should close it")
	}
}

func TestPanel_ClickWithoutBoundsIgnored(t *testing.T) {
	c := New(&stubSender{})

	c.Open()
	c.Click(image.Pt(0, 0))
	if !c.Visible() {
		t.Fatalf("click without panel bounds should be ignored")
	}
}
