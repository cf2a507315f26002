package listutil

import (
	"net/url"
	"testing"
)

// TestParsePageParams_Defaults verifies default page params when no query values provided.
func TestParsePageParams_Defaults(t *testing.T) {
	p := ParsePageParams(url.Values{})
	if p.Page != 1 {
		t.Errorf("expected page 1, got %d", p.Page)
	}
	if p.PerPage != DefaultPerPage {
		t.Errorf("expected per_page %d, got %d", DefaultPerPage, p.PerPage)
	}
}

// TestParsePageParams_Valid verifies correct parsing of valid page and per_page values.
func TestParsePageParams_Valid(t *testing.T) {
	p := ParsePageParams(url.Values{"page": {"3"}, "per_page": {"50"}})
	if p.Page != 3 || p.PerPage != 50 {
		t.Errorf("expected page 3 per_page 50, got %+v", p)
	}
}

// TestParsePageParams_Invalid verifies fallbacks for values outside the allowed range.
func TestParsePageParams_Invalid(t *testing.T) {
	p := ParsePageParams(url.Values{"page": {"-2"}, "per_page": {"25"}})
	if p.Page != 1 {
		t.Errorf("expected page 1 for negative page, got %d", p.Page)
	}
	if p.PerPage != DefaultPerPage {
		t.Errorf("expected default per_page for 25, got %d", p.PerPage)
	}
}

func TestParseFilter(t *testing.T) {
	isFruit := func(s string) bool { return s == "apple" || s == "pear" }
	q := url.Values{"kind": {"pear"}, "other": {"kale"}}
	if got := ParseFilter(q, "kind", isFruit); got != "pear" {
		t.Errorf("expected pear, got %q", got)
	}
	if got := ParseFilter(q, "other", isFruit); got != "" {
		t.Errorf("expected unknown value dropped, got %q", got)
	}
	if got := ParseFilter(q, "missing", isFruit); got != "" {
		t.Errorf("expected empty for missing key, got %q", got)
	}
}

func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		perPage    int
		total      int
		wantPages  int
		wantPage   int
		wantOffset int
	}{
		{"basic", 1, 20, 85, 5, 1, 0},
		{"page2", 2, 20, 85, 5, 2, 20},
		{"lastPage", 5, 20, 85, 5, 5, 80},
		{"pageBeyondTotal", 10, 20, 85, 5, 5, 80},
		{"emptyList", 1, 20, 0, 1, 1, 0},
		{"exactFit", 1, 10, 10, 1, 1, 0},
		{"zeroPerPage", 1, 0, 30, 2, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := NewPageInfo(PageParams{Page: tt.page, PerPage: tt.perPage}, tt.total)
			if pi.TotalPages != tt.wantPages {
				t.Errorf("TotalPages: got %d, want %d", pi.TotalPages, tt.wantPages)
			}
			if pi.Page != tt.wantPage {
				t.Errorf("Page: got %d, want %d", pi.Page, tt.wantPage)
			}
			if pi.Offset() != tt.wantOffset {
				t.Errorf("Offset: got %d, want %d", pi.Offset(), tt.wantOffset)
			}
			if pi.Total != tt.total {
				t.Errorf("Total: got %d, want %d", pi.Total, tt.total)
			}
		})
	}
}
