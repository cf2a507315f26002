package content

import (
	"errors"
	"fmt"
)

// ErrUnknownSection is returned for a key outside Sections.
var ErrUnknownSection = errors.New("unknown content section")

// Site is every section at once, as rendered by the home page and seeded on first start.
type Site struct {
	Carousel     []CarouselSlide `json:"carousel" yaml:"carousel"`
	About        About           `json:"about" yaml:"about"`
	Testimonials []Testimonial   `json:"testimonials" yaml:"testimonials"`
	Contact      ContactInfo     `json:"contact" yaml:"contact"`
	Store        StoreInfo       `json:"store" yaml:"store"`
}

// Section returns a pointer to the field of s holding section key.
func (s *Site) Section(key string) (any, error) {
	switch key {
	case SectionCarousel:
		return &s.Carousel, nil
	case SectionAbout:
		return &s.About, nil
	case SectionTestimonials:
		return &s.Testimonials, nil
	case SectionContact:
		return &s.Contact, nil
	case SectionStore:
		return &s.Store, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSection, key)
}

// NewSection returns a pointer to a zero value of the type stored under key,
// ready to be decoded into.
func NewSection(key string) (any, error) {
	var s Site
	return s.Section(key)
}

// ValidateSection validates v, a value or pointer of the type stored under key.
func ValidateSection(key string, v any) error {
	switch key {
	case SectionCarousel:
		if p, ok := v.(*[]CarouselSlide); ok {
			return ValidateSlides(*p)
		}
		if s, ok := v.([]CarouselSlide); ok {
			return ValidateSlides(s)
		}
	case SectionAbout:
		if p, ok := v.(*About); ok {
			return p.Validate()
		}
		if a, ok := v.(About); ok {
			return a.Validate()
		}
	case SectionTestimonials:
		if p, ok := v.(*[]Testimonial); ok {
			return ValidateTestimonials(*p)
		}
		if t, ok := v.([]Testimonial); ok {
			return ValidateTestimonials(t)
		}
	case SectionContact:
		if p, ok := v.(*ContactInfo); ok {
			return p.Validate()
		}
		if c, ok := v.(ContactInfo); ok {
			return c.Validate()
		}
	case SectionStore:
		if p, ok := v.(*StoreInfo); ok {
			return p.Validate()
		}
		if s, ok := v.(StoreInfo); ok {
			return s.Validate()
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSection, key)
	}
	return fmt.Errorf("section %q cannot hold %T", key, v)
}
