package bot

import (
	"bytes"
	"context"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/rbhz/word-lookup/app/lookup"
)

const (
	// Telegram rejects longer messages
	maxMessageLen = 4096
	cutMark       = "\n..."
)

// Lookuper looks words up in dictionary sources
type Lookuper interface {
	Lookup(ctx context.Context, word string) (lookup.Result, error)
}

// GetLookupMessageText executes template with lookup result.
// Results longer than a single message lose their last values, markup is never cut.
func GetLookupMessageText(result lookup.Result) (string, error) {
	buf := &bytes.Buffer{}
	if err := lookupMessage.ExecuteTemplate(buf, "header", result); err != nil {
		return "", errors.Wrap(err, "failed to format lookup header")
	}
	for _, e := range result.Entries {
		block, cut, err := fitEntry(e, maxMessageLen-len(cutMark)-1-buf.Len())
		if err != nil {
			return "", err
		}
		buf.WriteString(block)
		if cut {
			buf.WriteString(cutMark)
			break
		}
	}
	buf.WriteString("\n")
	return buf.String(), nil
}

// fitEntry renders entry within limit bytes dropping trailing values, and the tail of the
// first value when it doesn't fit alone. cut reports whether anything was dropped.
func fitEntry(e lookup.Entry, limit int) (block string, cut bool, err error) {
	values := e.Display()
	for n := len(values); n > 0; n-- {
		block, err = renderEntry(e, values[:n])
		if err != nil {
			return "", false, err
		}
		if len(block) <= limit {
			return block, n < len(values), nil
		}
	}
	empty, err := renderEntry(e, []string{""})
	if err != nil {
		return "", false, err
	}
	allowed := limit - len(empty)
	if allowed <= 0 {
		return "", true, nil
	}
	// escaped length is counted so entities are never split
	var value []rune
	for _, r := range values[0] {
		if allowed -= len(html.EscapeString(string(r))); allowed < 0 {
			break
		}
		value = append(value, r)
	}
	block, err = renderEntry(e, []string{string(value)})
	return block, true, err
}

func renderEntry(e lookup.Entry, values []string) (string, error) {
	buf := &bytes.Buffer{}
	e.Values = values
	if err := lookupMessage.ExecuteTemplate(buf, "entry", e); err != nil {
		return "", errors.Wrap(err, "failed to format lookup entry")
	}
	return buf.String(), nil
}

// WordHandler handles word requests
type WordHandler struct {
	lookup Lookuper
	neverPassthorugh
}

// Match returns true if message is a text
func (h WordHandler) Match(u tgbotapi.Update) bool {
	return u.Message != nil && u.Message.Text != "" && !u.Message.IsCommand()
}

// Handle looks word up and sends result to user
func (h WordHandler) Handle(ctx context.Context, b Bot, u tgbotapi.Update) {
	word := strings.ToLower(strings.TrimSpace(u.Message.Text))
	if strings.ContainsAny(word, " \n\t") {
		_, _ = b.Send(tgbotapi.NewMessage(u.Message.Chat.ID, "Sorry only single words are supported"))
		return
	}
	result, err := h.lookup.Lookup(ctx, word)
	if err != nil {
		log.Error().Err(err).Str("word", word).Msg("failed to lookup word")
		_, _ = b.Send(tgbotapi.NewMessage(u.Message.Chat.ID, "Sorry, something went wrong"))
		return
	}
	text, err := GetLookupMessageText(result)
	if err != nil {
		log.Error().Err(err).Str("lookup", result.ID).Msg("failed to render lookup")
		return
	}
	msg := tgbotapi.NewMessage(u.Message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, _ = b.Send(msg)
}

// NewWordHandler creates new word handler
func NewWordHandler(lookup Lookuper) WordHandler {
	return WordHandler{lookup: lookup}
}
