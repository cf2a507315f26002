// Package content holds the editable marketing sections of the storefront.
// Each section is an attribute bag stored as a whole and fully replaced on update.
package content

import (
	"fmt"
	"strings"

	"storefront/internal/domain/validation"
)

// Section keys.
const (
	SectionCarousel     = "carousel"
	SectionAbout        = "about"
	SectionTestimonials = "testimonials"
	SectionContact      = "contact"
	SectionStore        = "store"
)

// Sections lists every known section key.
var Sections = []string{SectionCarousel, SectionAbout, SectionTestimonials, SectionContact, SectionStore}

// Button variants for carousel slides.
const (
	VariantPrimary   = "primary"
	VariantSecondary = "secondary"
	VariantAccent    = "accent"
)

// IsSection reports whether key names a known section.
func IsSection(key string) bool {
	for _, s := range Sections {
		if s == key {
			return true
		}
	}
	return false
}

// CarouselSlide is one hero carousel slide.
type CarouselSlide struct {
	ID            int64  `json:"id" yaml:"id"`
	Image         string `json:"image" yaml:"image"`
	Title         string `json:"title" yaml:"title"`
	Description   string `json:"description" yaml:"description"`
	ButtonText    string `json:"buttonText" yaml:"buttonText"`
	ButtonLink    string `json:"buttonLink" yaml:"buttonLink"`
	ButtonVariant string `json:"buttonVariant" yaml:"buttonVariant"`
}

// Validate checks the slide fields.
func (s CarouselSlide) Validate() error {
	var errs validation.Errors
	errs.Required("image", s.Image)
	errs.Required("title", s.Title)
	if s.ButtonText != "" && s.ButtonLink == "" {
		errs.Add("buttonLink", "buttonLink is required when buttonText is set")
	}
	switch s.ButtonVariant {
	case "", VariantPrimary, VariantSecondary, VariantAccent:
	default:
		errs.Add("buttonVariant", "buttonVariant must be one of primary, secondary, accent")
	}
	return errs.Err()
}

// Feature is an icon + short text bullet in the about section.
type Feature struct {
	Icon string `json:"icon" yaml:"icon"`
	Text string `json:"text" yaml:"text"`
}

// About is the singleton about-us section. Description paragraphs are Markdown.
type About struct {
	Image       string    `json:"image" yaml:"image"`
	Title       string    `json:"title" yaml:"title"`
	Description []string  `json:"description" yaml:"description"`
	Features    []Feature `json:"features" yaml:"features"`
}

// Validate checks the about section.
func (a About) Validate() error {
	var errs validation.Errors
	errs.Required("title", a.Title)
	if len(a.Description) == 0 {
		errs.Add("description", "description needs at least one paragraph")
	}
	for i, f := range a.Features {
		if strings.TrimSpace(f.Text) == "" {
			errs.Add(fmt.Sprintf("features[%d].text", i), "feature text is required")
		}
	}
	return errs.Err()
}

// Testimonial is a customer quote with a star rating.
type Testimonial struct {
	ID      int64   `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Title   string  `json:"title" yaml:"title"`
	Content string  `json:"content" yaml:"content"`
	Rating  float64 `json:"rating" yaml:"rating"`
}

// Validate checks the testimonial fields. Ratings may use half stars.
func (t Testimonial) Validate() error {
	var errs validation.Errors
	errs.Required("name", t.Name)
	errs.Required("content", t.Content)
	if t.Rating < 1 || t.Rating > 5 {
		errs.Add("rating", "rating must be between 1 and 5")
	} else if t.Rating*2 != float64(int(t.Rating*2)) {
		errs.Add("rating", "rating must be a whole or half star")
	}
	return errs.Err()
}

// Hours is the opening time text for one day.
type Hours struct {
	Day   string `json:"day" yaml:"day"`
	Hours string `json:"hours" yaml:"hours"`
}

// Social holds social network links.
type Social struct {
	Instagram string `json:"instagram" yaml:"instagram"`
	Facebook  string `json:"facebook" yaml:"facebook"`
	Twitter   string `json:"twitter" yaml:"twitter"`
	Youtube   string `json:"youtube" yaml:"youtube"`
}

// Address holds the ways to reach the store.
type Address struct {
	Address string `json:"address" yaml:"address"`
	Phone   string `json:"phone" yaml:"phone"`
	Email   string `json:"email" yaml:"email"`
}

// ContactInfo is the singleton contact section.
type ContactInfo struct {
	Title       string  `json:"title" yaml:"title"`
	Subtitle    string  `json:"subtitle" yaml:"subtitle"`
	ContactInfo Address `json:"contactInfo" yaml:"contactInfo"`
	StoreHours  []Hours `json:"storeHours" yaml:"storeHours"`
	SocialMedia Social  `json:"socialMedia" yaml:"socialMedia"`
	MapEmbed    string  `json:"mapEmbed" yaml:"mapEmbed"`
}

// Validate checks the contact section.
func (c ContactInfo) Validate() error {
	var errs validation.Errors
	errs.Required("title", c.Title)
	errs.Required("contactInfo.address", c.ContactInfo.Address)
	errs.Required("contactInfo.phone", c.ContactInfo.Phone)
	if errs.Required("contactInfo.email", c.ContactInfo.Email) && !strings.Contains(c.ContactInfo.Email, "@") {
		errs.Add("contactInfo.email", "contactInfo.email must be an email address")
	}
	for i, h := range c.StoreHours {
		if strings.TrimSpace(h.Day) == "" || strings.TrimSpace(h.Hours) == "" {
			errs.Add(fmt.Sprintf("storeHours[%d]", i), "store hours need a day and hours")
		}
	}
	return errs.Err()
}

// Category is a product category card.
type Category struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Image       string `json:"image" yaml:"image"`
}

// StoreInfo is the singleton store identity section: name, highlights and product categories.
type StoreInfo struct {
	Name       string     `json:"name" yaml:"name"`
	Tagline    string     `json:"tagline" yaml:"tagline"`
	Highlights []string   `json:"highlights" yaml:"highlights"`
	Payments   []string   `json:"payments" yaml:"payments"`
	Categories []Category `json:"categories" yaml:"categories"`
}

// Validate checks the store section.
func (s StoreInfo) Validate() error {
	var errs validation.Errors
	errs.Required("name", s.Name)
	for i, c := range s.Categories {
		if strings.TrimSpace(c.Title) == "" {
			errs.Add(fmt.Sprintf("categories[%d].title", i), "category title is required")
		}
	}
	return errs.Err()
}

// ValidateSlides validates every slide and checks id uniqueness.
func ValidateSlides(slides []CarouselSlide) error {
	var errs validation.Errors
	seen := make(map[int64]bool, len(slides))
	for i, s := range slides {
		prefix := fmt.Sprintf("slides[%d].", i)
		if err := s.Validate(); err != nil {
			errs = append(errs, err.(validation.Errors).Prefix(prefix)...)
		}
		if s.ID <= 0 {
			errs.Add(prefix+"id", "id must be positive")
		} else if seen[s.ID] {
			errs.Add(prefix+"id", "id must be unique")
		}
		seen[s.ID] = true
	}
	return errs.Err()
}

// ValidateTestimonials validates every testimonial and checks id uniqueness.
func ValidateTestimonials(items []Testimonial) error {
	var errs validation.Errors
	seen := make(map[int64]bool, len(items))
	for i, t := range items {
		prefix := fmt.Sprintf("testimonials[%d].", i)
		if err := t.Validate(); err != nil {
			errs = append(errs, err.(validation.Errors).Prefix(prefix)...)
		}
		if t.ID <= 0 {
			errs.Add(prefix+"id", "id must be positive")
		} else if seen[t.ID] {
			errs.Add(prefix+"id", "id must be unique")
		}
		seen[t.ID] = true
	}
	return errs.Err()
}

// NextID returns one more than the largest id in ids.
func NextID(ids []int64) int64 {
	var max int64
	for _, id := range ids {
		if id > max {
			max = id
		}
	}
	return max + 1
}
