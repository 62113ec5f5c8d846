package handlers

import (
	"html/template"
	"log"
	"net/http"
	"strings"

	"propertybot/internal/models"
	"propertybot/internal/widget"
)

const homeListingCount = 10

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{if .Query}}{{.Query}} · {{end}}Property Finder</title>
</head>
<body class="bg-gray-100">
<main class="max-w-5xl mx-auto p-4">
<form action="/search" method="get" class="mb-4">
<input type="text" name="q" value="{{.Query}}" placeholder="Search by area, type or feature">
<button type="submit">Search</button>
</form>
{{if .Query}}<p class="text-sm mb-2">{{len .Cards}} result(s) for “{{.Query}}”</p>{{end}}
<div class="grid grid-cols-1 md:grid-cols-3 gap-4">
{{range .Cards}}{{.}}
{{else}}<p>No properties found.</p>{{end}}
</div>
</main>
{{with .Chat}}{{if .Open}}
<div id="chat-panel" class="fixed bottom-4 right-4 w-96 bg-white rounded-lg shadow-lg p-3">
<div class="flex justify-between mb-2"><strong>Property Assistant</strong>
<form method="post" action="/chat/close"><input type="hidden" name="return" value="{{$.Return}}"><button type="submit" aria-label="Close">×</button></form>
</div>
<div class="chat-transcript overflow-y-auto" style="max-height: 24rem">{{.Transcript}}</div>
<form method="post" action="/chat/send" class="flex gap-2 mt-2">
<input type="hidden" name="return" value="{{$.Return}}">
<input type="text" name="message" placeholder="e.g. 3 bedroom flat in Lekki" autofocus autocomplete="off">
<button type="submit">Send</button>
</form>
</div>
<form id="chat-click" method="post" action="/chat/click" hidden>
<input type="hidden" name="return" value="{{$.Return}}">
<input name="x"><input name="y"><input name="left"><input name="top"><input name="right"><input name="bottom">
</form>
<script>
document.addEventListener("click", function (e) {
  var panel = document.getElementById("chat-panel");
  if (!panel || panel.contains(e.target)) { return; }
  e.preventDefault();
  var box = panel.getBoundingClientRect(), f = document.getElementById("chat-click").elements;
  f.x.value = Math.round(e.clientX); f.y.value = Math.round(e.clientY);
  f.left.value = Math.round(box.left); f.top.value = Math.round(box.top);
  f.right.value = Math.round(box.right); f.bottom.value = Math.round(box.bottom);
  document.getElementById("chat-click").submit();
});
</script>
{{else}}
<form method="post" action="/chat/open" class="fixed bottom-4 right-4">
<input type="hidden" name="return" value="{{$.Return}}">
<button type="submit" id="bot-btn" class="rounded-full shadow-lg p-3">💬 Chat</button>
</form>
{{end}}{{end}}
</body>
</html>
`))

type pageData struct {
	Query  string
	Cards  []template.HTML
	Return string
	Chat   *panelView
}

type PageHandler struct {
	catalog listingSearcher
	panel   *ChatPanel
}

// NewPageHandler renders listing pages. A nil panel leaves the chat out.
func NewPageHandler(catalog listingSearcher, panel *ChatPanel) *PageHandler {
	return &PageHandler{catalog: catalog, panel: panel}
}

// Home lists the first listings of the catalog.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "", homeListingCount)
}

// Search renders GET /search?q=&limit=.
func (h *PageHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, strings.TrimSpace(r.URL.Query().Get("q")), searchLimit(r))
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, query string, limit int) {
	props, err := h.catalog.Search(r.Context(), query, limit)
	if err != nil {
		log.Printf("Page search failed: %v", err)
		http.Error(w, "Search is temporarily unavailable", http.StatusInternalServerError)
		return
	}

	cards, err := renderCards(props)
	if err != nil {
		log.Printf("Card rendering failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data := pageData{Query: query, Cards: cards, Return: r.URL.RequestURI()}
	if h.panel != nil {
		chat, err := h.panel.view(r)
		if err != nil {
			log.Printf("Chat panel rendering failed: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		data.Chat = &chat
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		log.Printf("Page rendering failed: %v", err)
	}
}

func renderCards(props []models.Property) ([]template.HTML, error) {
	cards := make([]template.HTML, 0, len(props))
	for _, p := range props {
		card, err := widget.RenderCard(p.Result())
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}
