// Package widget implements the property chat widget: panel visibility, an
// append-only transcript, one request per message and card rendering. It
// knows nothing about a concrete UI; hosts bind to it through Host.
package widget

import (
	"context"
	"errors"
	"image"
	"strings"
	"sync"
	"sync/atomic"

	"propertybot/internal/models"
)

const (
	SearchingText = "⏳ Searching..."
	ErrorText     = "❌ Error: Could not reach server."
)

var errEmptyResponse = errors.New("widget: empty chat response")

// Sender delivers one chat message to the server.
type Sender interface {
	Send(ctx context.Context, message string) (*models.ChatResponse, error)
}

// Host is the concrete UI the controller drives.
type Host interface {
	SetPanelVisible(visible bool)
	FocusInput()
	ClearInput()
	EntryAppended(e Entry)
	EntryRemoved(id EntryID)
}

type nopHost struct{}

func (nopHost) SetPanelVisible(bool) {}
func (nopHost) FocusInput()          {}
func (nopHost) ClearInput()          {}
func (nopHost) EntryAppended(Entry)  {}
func (nopHost) EntryRemoved(EntryID) {}

type Option func(*Controller)

func WithHost(h Host) Option {
	return func(c *Controller) {
		if h != nil {
			c.host = h
		}
	}
}

// WithPanelBounds sets the screen area occupied by the panel. Clicks outside
// it close the panel.
func WithPanelBounds(r image.Rectangle) Option {
	return func(c *Controller) {
		c.bounds = r
	}
}

// WithErrorHook receives the cause of every failed send. The transcript only
// ever shows ErrorText.
func WithErrorHook(fn func(error)) Option {
	return func(c *Controller) {
		c.onError = fn
	}
}

// Controller mediates between user input, a Sender and the transcript.
// Sends are not serialised: several SubmitMessage calls may be in flight at
// once, each removing only its own placeholder.
type Controller struct {
	sender     Sender
	host       Host
	transcript *Transcript
	onError    func(error)

	mu      sync.Mutex
	visible bool
	bounds  image.Rectangle

	pending atomic.Int32
}

func New(sender Sender, opts ...Option) *Controller {
	c := &Controller{
		sender:     sender,
		host:       nopHost{},
		transcript: NewTranscript(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Transcript() *Transcript {
	return c.transcript
}

func (c *Controller) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Pending reports how many sends are awaiting a response.
func (c *Controller) Pending() int {
	return int(c.pending.Load())
}

// Open shows the panel and moves focus to the input.
func (c *Controller) Open() {
	c.mu.Lock()
	changed := !c.visible
	c.visible = true
	c.mu.Unlock()

	if changed {
		c.host.SetPanelVisible(true)
	}
	c.host.FocusInput()
}

// Close hides the panel.
func (c *Controller) Close() {
	c.mu.Lock()
	changed := c.visible
	c.visible = false
	c.mu.Unlock()

	if changed {
		c.host.SetPanelVisible(false)
	}
}

// SetPanelBounds updates the panel area after a host relayout.
func (c *Controller) SetPanelBounds(r image.Rectangle) {
	c.mu.Lock()
	c.bounds = r
	c.mu.Unlock()
}

// Click handles a click that no control consumed. A click outside the panel
// bounds closes a visible panel. Without bounds every click is ignored.
func (c *Controller) Click(p image.Point) {
	c.mu.Lock()
	outside := c.visible && !c.bounds.Empty() && !p.In(c.bounds)
	c.mu.Unlock()

	if outside {
		c.Close()
	}
}

// SubmitMessage sends text to the server and records the exchange in the
// transcript. Blank input is ignored. Failures never escape: they become a
// single ErrorText entry.
func (c *Controller) SubmitMessage(ctx context.Context, text string) {
	msg := strings.TrimSpace(text)
	if msg == "" {
		return
	}

	c.appended(c.transcript.AppendUser(msg))
	c.host.ClearInput()
	placeholder := c.transcript.AppendPlaceholder(SearchingText)
	c.appended(placeholder)

	c.pending.Add(1)
	resp, err := c.sender.Send(ctx, msg)
	c.pending.Add(-1)
	if err == nil && resp == nil {
		err = errEmptyResponse
	}

	if c.transcript.Remove(placeholder.ID) {
		c.host.EntryRemoved(placeholder.ID)
	}

	if err != nil {
		if c.onError != nil {
			c.onError(err)
		}
		c.appended(c.transcript.AppendBot(ErrorText))
		return
	}

	c.appended(c.transcript.AppendBot(resp.Reply))
	for _, p := range resp.Properties {
		c.appended(c.transcript.AppendCard(p))
	}
}

func (c *Controller) appended(e Entry) {
	c.host.EntryAppended(e)
}
