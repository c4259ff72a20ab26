package proxy

import (
	"fmt"
	"net/url"
	"strings"
)

// Target is a third-party page served through the proxy
type Target struct {
	ID string
	// URL template, {word} is replaced by path escaped word
	URL string
	// Definition is a JSON path of definition text.
	// Targets with Definition are APIs rendered into a minimal page.
	Definition string
}

// DefaultTargets returns built-in proxy targets
func DefaultTargets() []Target {
	return []Target{
		{
			ID:         "oxford",
			URL:        "https://api.dictionaryapi.dev/api/v2/entries/en/{word}",
			Definition: "0.meanings.0.definitions.0.definition",
		},
		{ID: "collins", URL: "https://www.collinsdictionary.com/dictionary/english/{word}"},
		{ID: "thesaurus", URL: "https://www.thesaurus.com/browse/{word}"},
		{ID: "cambridge", URL: "https://dictionary.cambridge.org/dictionary/english/{word}"},
		{ID: "merriam-webster", URL: "https://www.merriam-webster.com/dictionary/{word}"},
	}
}

// resolve returns URL of the page to fetch.
// word is either a plain word or an absolute URL on the target site produced by link rewriting.
func (t Target) resolve(word string) (string, error) {
	if strings.HasPrefix(word, "http://") || strings.HasPrefix(word, "https://") {
		u, err := url.Parse(word)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrForeignURL, err)
		}
		if !t.owns(u.Hostname()) {
			return "", fmt.Errorf("%w: %s", ErrForeignURL, u.Hostname())
		}
		return u.String(), nil
	}
	return strings.ReplaceAll(t.URL, "{word}", url.PathEscape(word)), nil
}

// owns reports whether host belongs to the target site
func (t Target) owns(host string) bool {
	u, err := url.Parse(t.URL)
	if err != nil || host == "" {
		return false
	}
	site := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.ToLower(host)
	return host == site || strings.HasSuffix(host, "."+site)
}
