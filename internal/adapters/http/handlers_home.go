package web

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"math"
	"net/http"

	"github.com/gorilla/csrf"

	"storefront/internal/application/orchestrators"
	"storefront/internal/domain/content"
	"storefront/internal/domain/event"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("").Funcs(template.FuncMap{
	"renderMarkdown": renderMarkdown,
	"stars":          stars,
}).ParseFS(templateFS, "templates/*.html"))

// flashMessages maps flash codes to the banner shown after a form post.
var flashMessages = map[string]string{
	flashContactSent:   "Thanks for reaching out! We'll get back to you soon.",
	flashContactFailed: "Please fill in your name, a valid email, a subject and a message.",
	flashSubscribed:    "You're subscribed. Watch your inbox for weekly specials.",
	flashSubscribeFail: "Please enter a valid email address.",
	flashServerError:   "Something went wrong on our side. Please try again.",
}

// renderMarkdown converts one About paragraph to HTML; raw HTML in the input is escaped.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// starRow is a testimonial rating split into full, half and empty stars.
type starRow struct {
	Full, Half, Empty []struct{}
}

func stars(rating float64) starRow {
	rating = math.Max(0, math.Min(5, rating))
	full := int(rating)
	half := 0
	if rating-float64(full) >= 0.5 {
		half = 1
	}
	return starRow{
		Full:  make([]struct{}, full),
		Half:  make([]struct{}, half),
		Empty: make([]struct{}, 5-full-half),
	}
}

type homePage struct {
	Site      content.Site
	Events    []event.Event
	Flash     string
	CSRFField template.HTML
}

// handleHome handles GET /
func handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	site, err := orchestrators.ExecuteLoadSite(ctx, orchestrators.LoadSiteDeps{ContentStore: stores.ContentStore})
	if err != nil {
		internalError(w, err)
		return
	}
	events, err := stores.EventStore.List(ctx)
	if err != nil {
		internalError(w, err)
		return
	}

	var buf bytes.Buffer
	err = pageTemplates.ExecuteTemplate(&buf, "home.html", homePage{
		Site:      site,
		Events:    events,
		Flash:     flashMessages[r.URL.Query().Get("flash")],
		CSRFField: csrf.TemplateField(r),
	})
	if err != nil {
		slog.Error("template_render_failed", "template", "home.html", "error", err.Error())
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
