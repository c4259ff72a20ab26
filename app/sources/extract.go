package sources

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/tidwall/gjson"
)

// ErrMalformed is returned when upstream response can't be decoded
var ErrMalformed = errors.New("malformed response")

var textPolicy = bluemonday.StrictPolicy()

// Extract applies source rule to the response body.
// Empty result means the rule found nothing.
func (s Source) Extract(body []byte) ([]string, error) {
	switch s.Kind {
	case KindJSON:
		if !gjson.ValidBytes(body) {
			return nil, ErrMalformed
		}
		return s.Rule.apply(func(path string) ([]string, error) {
			var values []string
			collectJSON(gjson.GetBytes(body, path), &values)
			return values, nil
		})
	case KindHTML:
		doc, err := htmlquery.Parse(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return s.Rule.apply(func(path string) ([]string, error) {
			nodes, err := htmlquery.QueryAll(doc, path)
			if err != nil {
				return nil, fmt.Errorf("query %q: %w", path, err)
			}
			values := make([]string, 0, len(nodes))
			for _, n := range nodes {
				values = append(values, htmlquery.InnerText(n))
			}
			return values, nil
		})
	}
	return nil, fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidSource, s.ID, s.Kind)
}

func (r Rule) apply(query func(path string) ([]string, error)) ([]string, error) {
	raw, err := query(r.Path)
	if err != nil {
		return nil, err
	}
	values := r.shape(raw)
	if len(values) == 0 && r.Else != nil {
		return r.Else.apply(query)
	}
	return values, nil
}

func (r Rule) shape(raw []string) []string {
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if r.Markup {
			v = html.UnescapeString(textPolicy.Sanitize(v))
		}
		v = strings.Join(strings.Fields(v), " ")
		if v == "" {
			continue
		}
		values = append(values, v)
		if r.Limit > 0 && len(values) == r.Limit {
			break
		}
	}
	if len(values) == 0 {
		return nil
	}
	if r.Join != "" {
		return []string{r.Prefix + strings.Join(values, r.Join)}
	}
	if r.Prefix != "" {
		for i := range values {
			values[i] = r.Prefix + values[i]
		}
	}
	return values
}

// collectJSON flattens arrays, objects are skipped
func collectJSON(res gjson.Result, values *[]string) {
	switch {
	case !res.Exists():
	case res.IsArray():
		res.ForEach(func(_, v gjson.Result) bool {
			collectJSON(v, values)
			return true
		})
	case res.IsObject():
	default:
		*values = append(*values, res.String())
	}
}
