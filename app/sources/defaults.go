package sources

import (
	"fmt"
	"strings"
)

// DesktopUserAgent is sent to sites which refuse non-browser clients
const DesktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const (
	noDefinition = "No definition found"
	noSynonyms   = "No synonyms found"
)

// DefaultOrder returns display order of the built-in sources
func DefaultOrder() []string {
	return []string{
		"wiktionary",
		"hindi",
		"urdu",
		"merriam-webster",
		"free-dictionary",
		"thesaurus",
		"urban",
		"cambridge",
	}
}

// DefaultSources returns built-in sources table
func DefaultSources() []Source {
	browser := map[string]string{"User-Agent": DesktopUserAgent}
	return []Source{
		{
			ID:      "wiktionary",
			Title:   "Wiktionary",
			Kind:    KindJSON,
			URL:     "https://en.wiktionary.org/api/rest_v1/page/definition/{word}",
			Headers: map[string]string{"User-Agent": "word-lookup/1.0"},
			Rule: Rule{
				Path:   "en.#.definitions.0.definition",
				Limit:  1,
				Markup: true,
			},
			Field:    "definition",
			Fallback: noDefinition,
		},
		{
			ID:       "hindi",
			Title:    "Hindi",
			Kind:     KindHTML,
			URL:      "https://www.shabdkosh.com/dictionary/english-hindi/{word}",
			Headers:  browser,
			Rule:     Rule{Path: "//*[" + hasClass("dictionary_results") + "]//*[" + hasClass("dict_result") + "]", Limit: 1},
			Field:    "definition",
			Fallback: "No Hindi definition found",
		},
		{
			ID:       "urdu",
			Title:    "Urdu",
			Kind:     KindHTML,
			URL:      "https://www.urdupoint.com/dictionary/english-urdu/{word}.html",
			Headers:  browser,
			Rule:     Rule{Path: "//*[" + hasClass("meaning") + "]", Limit: 1},
			Field:    "definition",
			Fallback: "No Urdu definition found",
		},
		{
			ID:    "merriam-webster",
			Title: "Merriam-Webster",
			Kind:  KindJSON,
			URL:   "https://www.dictionaryapi.com/api/v3/references/collegiate/json/{word}?key={key}",
			Rule: Rule{
				Path: "0.shortdef",
				Join: "; ",
				// unknown words are answered with a list of suggestions
				Else: &Rule{Path: "0", Limit: 1, Prefix: "Did you mean: "},
			},
			Field:       "definition",
			Fallback:    noDefinition,
			RequiresKey: true,
			MissingKey:  "MW API key missing",
		},
		{
			ID:       "free-dictionary",
			Title:    "Free Dictionary",
			Kind:     KindJSON,
			URL:      "https://api.dictionaryapi.dev/api/v2/entries/en/{word}",
			Rule:     Rule{Path: "0.meanings.#.definitions.0.definition"},
			Multi:    true,
			Field:    "definitions",
			Fallback: noDefinition,
		},
		{
			ID:       "thesaurus",
			Title:    "Thesaurus (Synonyms)",
			Kind:     KindJSON,
			URL:      "https://api.datamuse.com/words?rel_syn={word}",
			Rule:     Rule{Path: "#.word"},
			Multi:    true,
			List:     true,
			Field:    "synonyms",
			Fallback: noSynonyms,
		},
		{
			ID:       "urban",
			Title:    "Urban Dictionary",
			Kind:     KindJSON,
			URL:      "https://api.urbandictionary.com/v0/define?term={word}",
			Rule:     Rule{Path: "list.#.definition", Limit: 3},
			Multi:    true,
			Field:    "definitions",
			Fallback: noDefinition,
		},
		{
			ID:       "cambridge",
			Title:    "Cambridge",
			Kind:     KindHTML,
			URL:      "https://dictionary.cambridge.org/dictionary/english/{word}",
			Headers:  browser,
			Rule:     Rule{Path: "//*[" + hasClass("def", "ddef_d", "db") + "]", Limit: 1},
			Field:    "definition",
			Fallback: noDefinition,
		},
		{
			ID:       "oxford",
			Title:    "Oxford",
			Kind:     KindJSON,
			URL:      "https://api.dictionaryapi.dev/api/v2/entries/en/{word}",
			Rule:     Rule{Path: "0.meanings.0.definitions.0.definition", Limit: 1},
			Field:    "definition",
			Fallback: noDefinition,
		},
		{
			ID:    "collins",
			Title: "Collins",
			Kind:  KindHTML,
			URL:   "https://www.collinsdictionary.com/dictionary/english/{word}",
			Headers: map[string]string{
				"User-Agent":      DesktopUserAgent,
				"Accept-Language": "en-US,en;q=0.9",
			},
			Rule:     Rule{Path: "//div[" + hasClass("def") + "]", Limit: 1},
			Field:    "definition",
			Fallback: noDefinition,
		},
	}
}

// hasClass builds XPath predicate matching elements with all given classes
func hasClass(classes ...string) string {
	conds := make([]string, 0, len(classes))
	for _, c := range classes {
		conds = append(conds, fmt.Sprintf("contains(concat(' ', normalize-space(@class), ' '), ' %s ')", c))
	}
	return strings.Join(conds, " and ")
}
