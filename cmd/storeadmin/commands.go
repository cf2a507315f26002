package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"storefront/internal/application/adminui"
	"storefront/internal/application/eventclient"
	"storefront/internal/domain/audit"
	"storefront/internal/domain/content"
	"storefront/internal/domain/event"
)

// field is one prompted form input.
type field[T any] struct {
	label string
	get   func(T) string
	set   func(*T, string) error
}

func text[T any](label string, at func(*T) *string) field[T] {
	return field[T]{
		label: label,
		get:   func(v T) string { return *at(&v) },
		set:   func(v *T, s string) error { *at(v) = s; return nil },
	}
}

var eventFields = []field[event.Draft]{
	text("Title", func(d *event.Draft) *string { return &d.Title }),
	text("Description", func(d *event.Draft) *string { return &d.Description }),
	text("Month (JAN-DEC)", func(d *event.Draft) *string { return &d.Month }),
	text("Day", func(d *event.Draft) *string { return &d.Day }),
	text("Time", func(d *event.Draft) *string { return &d.Time }),
	text("Location", func(d *event.Draft) *string { return &d.Location }),
	text("Color (primary, secondary, accent)", func(d *event.Draft) *string { return &d.Color }),
}

var slideFields = []field[content.CarouselSlide]{
	text("Image URL", func(s *content.CarouselSlide) *string { return &s.Image }),
	text("Title", func(s *content.CarouselSlide) *string { return &s.Title }),
	text("Description", func(s *content.CarouselSlide) *string { return &s.Description }),
	text("Button text", func(s *content.CarouselSlide) *string { return &s.ButtonText }),
	text("Button link", func(s *content.CarouselSlide) *string { return &s.ButtonLink }),
	text("Button variant", func(s *content.CarouselSlide) *string { return &s.ButtonVariant }),
}

var testimonialFields = []field[content.Testimonial]{
	text("Name", func(t *content.Testimonial) *string { return &t.Name }),
	text("Title", func(t *content.Testimonial) *string { return &t.Title }),
	text("Quote", func(t *content.Testimonial) *string { return &t.Content }),
	{
		label: "Rating (1-5)",
		get: func(t content.Testimonial) string {
			if t.Rating == 0 {
				return ""
			}
			return strconv.FormatFloat(t.Rating, 'f', -1, 64)
		},
		set: func(t *content.Testimonial, s string) error {
			if s == "" {
				t.Rating = 0
				return nil
			}
			r, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("rating %q is not a number", s)
			}
			t.Rating = r
			return nil
		},
	},
}

// paragraphSep separates about paragraphs on a single input line.
const paragraphSep = " | "

var aboutFields = []field[content.About]{
	text("Image URL", func(a *content.About) *string { return &a.Image }),
	text("Title", func(a *content.About) *string { return &a.Title }),
	{
		label: "Paragraphs (separated by |)",
		get:   func(a content.About) string { return strings.Join(a.Description, paragraphSep) },
		set: func(a *content.About, s string) error {
			a.Description = nil
			for _, p := range strings.Split(s, "|") {
				if p = strings.TrimSpace(p); p != "" {
					a.Description = append(a.Description, p)
				}
			}
			return nil
		},
	},
}

// fill prompts for every field, re-asking a field whose value does not parse.
// At end of input ask returns the current value, which always parses.
func fill[T any](a *app, v *T, fields []field[T]) {
	for _, f := range fields {
		for {
			err := f.set(v, a.ask(f.label, f.get(*v)))
			if err == nil {
				break
			}
			a.say("%v", err)
		}
	}
}

// listCommand runs list|add|edit|delete against one managed list.
func listCommand[R, D any](ctx context.Context, a *app, m *adminui.ListManager[R, D], fields []field[D], show func([]R), describe func(R) string, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	m.Notices().Hook = a.printNotice

	if args[0] == "list" {
		if err := m.Load(ctx); err != nil {
			return err
		}
		show(m.Items())
		return nil
	}

	if err := a.login(ctx); err != nil {
		return err
	}
	if err := m.Load(ctx); err != nil {
		return err
	}
	switch args[0] {
	case "add":
		if err := m.StartAdd(); err != nil {
			return err
		}
		return submitLoop(ctx, a, m, fields)
	case "edit":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		if err := m.StartEdit(id); err != nil {
			return err
		}
		return submitLoop(ctx, a, m, fields)
	case "delete":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		return m.Delete(ctx, id, func(r R) bool {
			return a.yes || a.askYesNo(fmt.Sprintf("Delete %s?", describe(r)))
		})
	}
	return fmt.Errorf("%w: unknown action %q", errUsage, args[0])
}

// submitLoop fills the open form and submits it until it saves or the admin gives up.
func submitLoop[R, D any](ctx context.Context, a *app, m *adminui.ListManager[R, D], fields []field[D]) error {
	for {
		draft := m.State().Draft
		fill(a, &draft, fields)
		if err := m.EditDraft(func(d *D) { *d = draft }); err != nil {
			return err
		}
		err := m.Submit(ctx)
		if err == nil {
			return nil
		}
		if !a.askYesNo("Try again?") {
			_ = m.Cancel()
			return err
		}
	}
}

func idArg(args []string) (int64, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%w: %s needs an id", errUsage, args[0])
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad id %q", errUsage, args[1])
	}
	return id, nil
}

func (a *app) table(header string, rows func(w *tabwriter.Writer)) {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, header)
	rows(w)
	w.Flush()
}

func (a *app) events(ctx context.Context, args []string) error {
	m := adminui.NewListManager[event.Event, event.Draft](a.client.Events(), adminui.ListConfig[event.Event, event.Draft]{
		Name:     "event",
		ID:       func(e event.Event) int64 { return e.ID },
		DraftOf:  event.Event.Draft,
		Validate: func(d event.Draft) error { return d.Normalize().Validate() },
	})
	show := func(events []event.Event) {
		a.table("ID\tDATE\tTIME\tTITLE\tLOCATION", func(w *tabwriter.Writer) {
			for _, e := range events {
				fmt.Fprintf(w, "%d\t%s %s\t%s\t%s\t%s\n", e.ID, e.Month, e.Day, e.Time, e.Title, e.Location)
			}
		})
	}
	describe := func(e event.Event) string { return fmt.Sprintf("event %q", e.Title) }
	return listCommand(ctx, a, m, eventFields, show, describe, args)
}

func (a *app) slides(ctx context.Context, args []string) error {
	m := adminui.NewListManager[content.CarouselSlide, content.CarouselSlide](a.client.Slides(), adminui.ListConfig[content.CarouselSlide, content.CarouselSlide]{
		Name:     "slide",
		ID:       func(s content.CarouselSlide) int64 { return s.ID },
		DraftOf:  func(s content.CarouselSlide) content.CarouselSlide { return s },
		Validate: content.CarouselSlide.Validate,
	})
	show := func(slides []content.CarouselSlide) {
		a.table("ID\tTITLE\tIMAGE", func(w *tabwriter.Writer) {
			for _, s := range slides {
				fmt.Fprintf(w, "%d\t%s\t%s\n", s.ID, s.Title, s.Image)
			}
		})
	}
	describe := func(s content.CarouselSlide) string { return fmt.Sprintf("slide %q", s.Title) }
	return listCommand(ctx, a, m, slideFields, show, describe, args)
}

func (a *app) testimonials(ctx context.Context, args []string) error {
	m := adminui.NewListManager[content.Testimonial, content.Testimonial](a.client.Testimonials(), adminui.ListConfig[content.Testimonial, content.Testimonial]{
		Name:     "testimonial",
		ID:       func(t content.Testimonial) int64 { return t.ID },
		DraftOf:  func(t content.Testimonial) content.Testimonial { return t },
		Validate: content.Testimonial.Validate,
	})
	show := func(items []content.Testimonial) {
		a.table("ID\tNAME\tRATING\tQUOTE", func(w *tabwriter.Writer) {
			for _, t := range items {
				fmt.Fprintf(w, "%d\t%s\t%g\t%s\n", t.ID, t.Name, t.Rating, t.Content)
			}
		})
	}
	describe := func(t content.Testimonial) string { return fmt.Sprintf("testimonial from %s", t.Name) }
	return listCommand(ctx, a, m, testimonialFields, show, describe, args)
}

func (a *app) about(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	f := adminui.NewFormManager[content.About](a.client.AboutSection(), "about section", content.About.Validate)
	f.Notices().Hook = a.printNotice

	switch args[0] {
	case "show":
		if err := f.Load(ctx); err != nil {
			return err
		}
		v := f.Value()
		a.say("%s", v.Title)
		for _, p := range v.Description {
			a.say("\n%s", p)
		}
		return nil
	case "edit":
		if err := a.login(ctx); err != nil {
			return err
		}
		if err := f.Load(ctx); err != nil {
			return err
		}
		if err := f.StartEdit(); err != nil {
			return err
		}
		for {
			draft := f.Draft()
			fill(a, &draft, aboutFields)
			if err := f.EditDraft(func(v *content.About) { *v = draft }); err != nil {
				return err
			}
			err := f.Submit(ctx)
			if err == nil {
				return nil
			}
			if !a.askYesNo("Try again?") {
				_ = f.Cancel()
				return err
			}
		}
	}
	return fmt.Errorf("%w: unknown action %q", errUsage, args[0])
}

func (a *app) messages(ctx context.Context) error {
	if err := a.login(ctx); err != nil {
		return err
	}
	msgs, err := a.client.ContactMessages(ctx)
	if err != nil {
		return err
	}
	a.table("RECEIVED\tFROM\tSUBJECT", func(w *tabwriter.Writer) {
		for _, m := range msgs {
			fmt.Fprintf(w, "%s\t%s <%s>\t%s\n", m.CreatedAt.Format("2006-01-02 15:04"), m.Name, m.Email, m.Subject)
		}
	})
	return nil
}

func (a *app) subscribers(ctx context.Context) error {
	if err := a.login(ctx); err != nil {
		return err
	}
	subs, err := a.client.Subscribers(ctx)
	if err != nil {
		return err
	}
	a.table("SUBSCRIBED\tEMAIL", func(w *tabwriter.Writer) {
		for _, s := range subs {
			fmt.Fprintf(w, "%s\t%s\n", s.CreatedAt.Format("2006-01-02"), s.Email)
		}
	})
	a.say("%d subscribers", len(subs))
	return nil
}

func (a *app) audit(ctx context.Context, args []string) error {
	q := eventclient.AuditQuery{}
	for _, arg := range args {
		if n, err := strconv.Atoi(arg); err == nil && n > 0 {
			q.Page = n
			continue
		}
		if !audit.IsCategory(arg) {
			return fmt.Errorf("%w: unknown category %q", errUsage, arg)
		}
		q.Category = audit.Category(arg)
	}
	if err := a.login(ctx); err != nil {
		return err
	}
	page, err := a.client.AuditLog(ctx, q)
	if err != nil {
		return err
	}
	a.table("AT\tACTOR\tCATEGORY\tACTION\tRESOURCE\tDETAIL", func(w *tabwriter.Writer) {
		for _, e := range page.Entries {
			resource := ""
			if e.ResourceType != "" {
				resource = e.ResourceType + " " + e.ResourceID
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", e.At.Local().Format("2006-01-02 15:04"),
				e.Actor, e.Category, e.Action, resource, e.Description)
		}
	})
	a.say("page %d of %d (%d entries)", page.Page, page.TotalPages, page.Total)
	return nil
}
