package handlers

import (
	"context"
	"html/template"
	"image"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"propertybot/internal/models"
	"propertybot/internal/widget"
)

const (
	chatSessionCookie = "chat_session"
	chatSessionIdle   = 30 * time.Minute
)

// replierSender lets a widget controller talk to the chat service in
// process instead of over HTTP.
type replierSender struct {
	chat chatReplier
}

func (s replierSender) Send(ctx context.Context, message string) (*models.ChatResponse, error) {
	return s.chat.Reply(ctx, message)
}

type panelSession struct {
	ctrl     *widget.Controller
	lastSeen time.Time
}

// ChatPanel hosts one widget controller per browser session and renders it
// as the chat panel of the listing pages. Every interaction is a form post
// followed by a redirect back to the page.
type ChatPanel struct {
	sender widget.Sender

	mu       sync.Mutex
	sessions map[string]*panelSession
	idle     time.Duration
	now      func() time.Time
}

func NewChatPanel(chat chatReplier) *ChatPanel {
	return &ChatPanel{
		sender:   replierSender{chat: chat},
		sessions: make(map[string]*panelSession),
		idle:     chatSessionIdle,
		now:      time.Now,
	}
}

// lookup returns the controller of the request's session, if it has one.
// Idle sessions are dropped on the way.
func (p *ChatPanel) lookup(r *http.Request) (*widget.Controller, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	for id, s := range p.sessions {
		if now.Sub(s.lastSeen) > p.idle {
			delete(p.sessions, id)
		}
	}

	c, err := r.Cookie(chatSessionCookie)
	if err != nil {
		return nil, false
	}
	s, ok := p.sessions[c.Value]
	if !ok {
		return nil, false
	}
	s.lastSeen = now
	return s.ctrl, true
}

// controller returns the session's controller, starting a session and
// setting its cookie when the request has none. Only form posts start
// sessions, so crawlers reading the pages never hold one.
func (p *ChatPanel) controller(w http.ResponseWriter, r *http.Request) *widget.Controller {
	if ctrl, ok := p.lookup(r); ok {
		return ctrl
	}

	ctrl := widget.New(p.sender, widget.WithErrorHook(func(err error) {
		log.Printf("Chat panel send failed: %v", err)
	}))
	id := uuid.NewString()

	p.mu.Lock()
	p.sessions[id] = &panelSession{ctrl: ctrl, lastSeen: p.now()}
	p.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     chatSessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return ctrl
}

// Sessions reports how many browser sessions hold a controller.
func (p *ChatPanel) Sessions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

type panelView struct {
	Open       bool
	Transcript template.HTML
}

// view renders the session's panel state for a page. A request without a
// session sees a closed, empty panel.
func (p *ChatPanel) view(r *http.Request) (panelView, error) {
	ctrl, ok := p.lookup(r)
	if !ok {
		return panelView{}, nil
	}
	transcript, err := widget.RenderTranscript(ctrl.Transcript().Entries())
	if err != nil {
		return panelView{}, err
	}
	return panelView{
		Open:       ctrl.Visible(),
		Transcript: transcript,
	}, nil
}

// Open answers POST /chat/open.
func (p *ChatPanel) Open(w http.ResponseWriter, r *http.Request) {
	p.controller(w, r).Open()
	redirectBack(w, r)
}

// Close answers POST /chat/close.
func (p *ChatPanel) Close(w http.ResponseWriter, r *http.Request) {
	p.controller(w, r).Close()
	redirectBack(w, r)
}

// Send answers POST /chat/send with form field message.
func (p *ChatPanel) Send(w http.ResponseWriter, r *http.Request) {
	ctrl := p.controller(w, r)
	ctrl.Open()
	ctrl.SubmitMessage(r.Context(), r.FormValue("message"))
	redirectBack(w, r)
}

// Click answers POST /chat/click. The page reports the click point (x, y)
// and the panel's current box (left, top, right, bottom) in viewport pixels.
func (p *ChatPanel) Click(w http.ResponseWriter, r *http.Request) {
	ctrl := p.controller(w, r)

	if bounds, ok := formRect(r); ok {
		ctrl.SetPanelBounds(bounds)
	}
	if pt, ok := formPoint(r); ok {
		ctrl.Click(pt)
	}
	redirectBack(w, r)
}

func formInts(r *http.Request, keys ...string) ([]int, bool) {
	out := make([]int, len(keys))
	for i, k := range keys {
		n, err := strconv.Atoi(r.FormValue(k))
		if err != nil {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

func formPoint(r *http.Request) (image.Point, bool) {
	v, ok := formInts(r, "x", "y")
	if !ok {
		return image.Point{}, false
	}
	return image.Pt(v[0], v[1]), true
}

func formRect(r *http.Request) (image.Rectangle, bool) {
	v, ok := formInts(r, "left", "top", "right", "bottom")
	if !ok {
		return image.Rectangle{}, false
	}
	return image.Rect(v[0], v[1], v[2], v[3]), true
}

// redirectBack returns the browser to the local page named by the return
// field, or to the home page.
func redirectBack(w http.ResponseWriter, r *http.Request) {
	target := r.FormValue("return")
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
