package widget

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"propertybot/internal/models"
)

const CurrencySymbol = "₦"

// Markup is escaped contextually by html/template, so server-supplied title,
// location, reply and image URL cannot inject markup or script URLs.
const markup = `
{{define "card"}}<div class="bg-white rounded-lg shadow-md mb-2 overflow-hidden">
<img src="{{.ImageURL}}" class="w-full h-24 object-cover" alt="{{.Title}}">
<div class="p-3">
<h6 class="font-semibold text-sm mb-1">{{.Title}}</h6>
<p class="text-sm mb-1"><strong class="text-green-600">{{price .Price}}</strong> • {{.Location}}</p>
<small class="text-gray-600 text-xs">🛏️ {{.Bedrooms}} • 🛁 {{.Bathrooms}} • 📏 {{number .AreaSqm}}m²</small>
</div>
</div>{{end}}
{{define "entry"}}<div class="mb-3{{if .Message.IsUser}} text-right{{end}}" data-entry="{{.ID}}">
{{- if .Message.IsUser}}<small class="inline-block px-2 py-1 rounded text-xs font-semibold bg-blue-600 text-white">You:</small>
{{- else}}<small class="inline-block px-2 py-1 rounded text-xs font-semibold bg-gray-200 text-gray-800">Bot:</small>{{end}}
{{- if .Card}} {{template "card" .Card}}{{else}} <span class="text-sm">{{.Message.Text}}</span>{{end -}}
</div>{{end}}
{{define "transcript"}}{{range .}}{{template "entry" .}}
{{end}}{{end}}`

var templates = template.Must(template.New("widget").Funcs(template.FuncMap{
	"price":  FormatPrice,
	"number": FormatNumber,
}).Parse(markup))

// FormatPrice renders a naira amount with grouped digits, e.g. ₦1,500,000.
func FormatPrice(v float64) string {
	p := message.NewPrinter(language.English)
	if v == math.Trunc(v) {
		return CurrencySymbol + p.Sprintf("%.0f", v)
	}
	return CurrencySymbol + p.Sprintf("%.2f", v)
}

// FormatNumber prints v without trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderCard produces the card block for one property.
func RenderCard(p models.PropertyResult) (template.HTML, error) {
	return execute("card", p)
}

// RenderEntry produces the markup for a single transcript entry.
func RenderEntry(e Entry) (template.HTML, error) {
	return execute("entry", e)
}

// RenderTranscript produces the markup for entries in order.
func RenderTranscript(entries []Entry) (template.HTML, error) {
	return execute("transcript", entries)
}

func execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
