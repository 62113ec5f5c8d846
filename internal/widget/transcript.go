package widget

import (
	"sync"

	"propertybot/internal/models"
)

type EntryKind int

const (
	KindUser EntryKind = iota
	KindBot
	KindPlaceholder
	KindCard
)

func (k EntryKind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindBot:
		return "bot"
	case KindPlaceholder:
		return "placeholder"
	case KindCard:
		return "card"
	default:
		return "unknown"
	}
}

// EntryID identifies a transcript entry for its whole lifetime.
type EntryID uint64

// Entry is one visible line of the transcript. Card is set only for
// KindCard entries.
type Entry struct {
	ID      EntryID
	Kind    EntryKind
	Message models.ChatMessage
	Card    *models.PropertyResult
}

// Transcript is the ordered, append-only list of chat entries. The only
// removal it allows is of placeholder entries.
type Transcript struct {
	mu      sync.Mutex
	entries []Entry
	nextID  EntryID
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

func (t *Transcript) appendEntry(kind EntryKind, msg models.ChatMessage, card *models.PropertyResult) Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	e := Entry{ID: t.nextID, Kind: kind, Message: msg, Card: card}
	t.entries = append(t.entries, e)
	return e
}

// AppendUser adds a user-authored line.
func (t *Transcript) AppendUser(text string) Entry {
	return t.appendEntry(KindUser, models.ChatMessage{Text: text, IsUser: true}, nil)
}

// AppendBot adds a bot-authored line.
func (t *Transcript) AppendBot(text string) Entry {
	return t.appendEntry(KindBot, models.ChatMessage{Text: text}, nil)
}

func (t *Transcript) AppendPlaceholder(text string) Entry {
	return t.appendEntry(KindPlaceholder, models.ChatMessage{Text: text}, nil)
}

// AppendCard adds a bot-authored property card.
func (t *Transcript) AppendCard(p models.PropertyResult) Entry {
	return t.appendEntry(KindCard, models.ChatMessage{Text: p.Title}, &p)
}

// Remove deletes the placeholder with the given id. It reports false when
// no such placeholder exists; other kinds are never removed.
func (t *Transcript) Remove(id EntryID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, e := range t.entries {
		if e.ID != id {
			continue
		}
		if e.Kind != KindPlaceholder {
			return false
		}
		t.entries = append(t.entries[:i], t.entries[i+1:]...)
		return true
	}
	return false
}

// Entries returns a copy of the transcript in display order.
func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Last returns the most recent entry, if any.
func (t *Transcript) Last() (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.entries) == 0 {
		return Entry{}, false
	}
	return t.entries[len(t.entries)-1], true
}
