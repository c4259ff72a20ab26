package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/rbhz/word-lookup/app/lookup"
	"github.com/rbhz/word-lookup/app/render"
)

const defaultField = "definition"

// dictionaryService implements word lookup API
type dictionaryService struct {
	lookuper Lookuper
}

// Lookup renders all sources as HTML page, or a single source as JSON when source param is set
func (d dictionaryService) Lookup(w http.ResponseWriter, r *http.Request) {
	word := strings.TrimSpace(r.URL.Query().Get("word"))
	if source := r.URL.Query().Get("source"); source != "" {
		d.lookupSource(w, r, source, word)
		return
	}
	if word == "" {
		writeText(w, http.StatusBadRequest, "Missing 'word' query param")
		return
	}
	result, err := d.lookuper.Lookup(r.Context(), word)
	if err != nil {
		log.Error().Err(err).Str("word", word).Msg("failed to lookup word")
		writeText(w, http.StatusInternalServerError, "Failed to lookup word")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.Page(w, result); err != nil {
		log.Warn().Err(err).Str("lookup", result.ID).Msg("failed to write response")
	}
}

func (d dictionaryService) lookupSource(w http.ResponseWriter, r *http.Request, source string, word string) {
	if word == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing parameters"})
		return
	}
	entry, err := d.lookuper.LookupSource(r.Context(), source, word)
	switch {
	case errors.Is(err, lookup.ErrUnknownSource):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Unknown source"})
		return
	case err != nil:
		log.Error().Err(err).Str("source", source).Str("word", word).Msg("failed to lookup source")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch definition"})
		return
	}
	field := entry.Source.Field
	if field == "" {
		field = defaultField
	}
	var value interface{} = strings.Join(entry.Display(), "; ")
	if entry.Source.Multi {
		value = entry.Display()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"word": word, field: value})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(response); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}
