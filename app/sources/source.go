package sources

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/antchfx/xpath"
)

// Kind defines how a source is fetched and which language its rule is written in
type Kind string

const (
	// KindJSON sources are API calls, rules are gjson paths
	KindJSON Kind = "json"
	// KindHTML sources are scraped pages, rules are XPath expressions
	KindHTML Kind = "html"
)

const (
	placeholderWord = "{word}"
	placeholderKey  = "{key}"
)

// ErrInvalidSource is returned when a source definition can't be used
var ErrInvalidSource = errors.New("invalid source")

// Rule reduces a raw upstream response to display values
type Rule struct {
	// Path is a gjson path for JSON sources or an XPath expression for HTML sources
	Path string `yaml:"path"`
	// Limit keeps only first N values, 0 keeps all of them
	Limit int `yaml:"limit"`
	// Join merges values into a single one
	Join   string `yaml:"join"`
	Prefix string `yaml:"prefix"`
	// Markup marks values which carry inline HTML
	Markup bool `yaml:"markup"`
	// Else is tried when Path yields nothing
	Else *Rule `yaml:"else"`
}

// Source holds a single upstream dictionary definition
type Source struct {
	ID      string            `yaml:"id"`
	Title   string            `yaml:"title"`
	Kind    Kind              `yaml:"kind"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
	Rule    Rule              `yaml:"rule"`
	// Multi sources render every value as a separate item
	Multi bool `yaml:"multi"`
	// List sources render values as inline list items
	List bool `yaml:"list"`
	// Field is a key used for a single source JSON response
	Field    string `yaml:"field"`
	Fallback string `yaml:"fallback"`
	// RequiresKey sources are never called without an API key
	RequiresKey bool   `yaml:"requires_key"`
	MissingKey  string `yaml:"missing_key"`
}

// RequestURL builds upstream URL for a word.
// Placeholders before "?" are path-escaped, after it query-escaped.
func (s Source) RequestURL(word string, key string) string {
	return expand(s.URL, word, key)
}

// FallbackValues returns values displayed when nothing was extracted
func (s Source) FallbackValues() []string {
	return []string{s.Fallback}
}

// MissingKeyValues returns values displayed when required API key is not configured
func (s Source) MissingKeyValues() []string {
	if s.MissingKey == "" {
		return s.FallbackValues()
	}
	return []string{s.MissingKey}
}

// Validate checks source definition
func (s Source) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidSource)
	}
	if s.Kind != KindJSON && s.Kind != KindHTML {
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidSource, s.ID, s.Kind)
	}
	u, err := url.Parse(expand(s.URL, "word", "key"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || !strings.Contains(s.URL, placeholderWord) {
		return fmt.Errorf("%w: %s: bad url template %q", ErrInvalidSource, s.ID, s.URL)
	}
	if s.Fallback == "" {
		return fmt.Errorf("%w: %s: empty fallback", ErrInvalidSource, s.ID)
	}
	for r := &s.Rule; r != nil; r = r.Else {
		if r.Path == "" {
			return fmt.Errorf("%w: %s: empty rule path", ErrInvalidSource, s.ID)
		}
		if s.Kind == KindHTML {
			if _, err := xpath.Compile(r.Path); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidSource, s.ID, err)
			}
		}
	}
	return nil
}

func expand(template string, word string, key string) string {
	path, query, hasQuery := strings.Cut(template, "?")
	path = strings.NewReplacer(
		placeholderWord, url.PathEscape(word),
		placeholderKey, url.PathEscape(key),
	).Replace(path)
	if !hasQuery {
		return path
	}
	query = strings.NewReplacer(
		placeholderWord, url.QueryEscape(word),
		placeholderKey, url.QueryEscape(key),
	).Replace(query)
	return path + "?" + query
}
