package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/rbhz/word-lookup/app/proxy"
)

// proxyService serves sanitized third-party pages
type proxyService struct {
	proxy PageProxy
}

// Fetch returns sanitized page of source for word
func (p proxyService) Fetch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	source, word := query.Get("source"), query.Get("word")
	// other fields come from proxied GET forms
	query.Del("source")
	query.Del("word")
	word = proxy.MergeQuery(word, query)
	page, err := p.proxy.Fetch(r.Context(), source, word)
	switch {
	case errors.Is(err, proxy.ErrMissingParams):
		writeText(w, http.StatusBadRequest, "Missing parameters")
		return
	case errors.Is(err, proxy.ErrUnknownSource):
		writeText(w, http.StatusBadRequest, "Unknown source")
		return
	case errors.Is(err, proxy.ErrForeignURL):
		writeText(w, http.StatusBadRequest, "Invalid word")
		return
	case err != nil:
		log.Error().Err(err).Str("source", source).Str("word", word).Msg("failed to fetch page")
		writeText(w, http.StatusInternalServerError, "Failed to fetch page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(page); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}
