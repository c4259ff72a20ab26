package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getSource(t *testing.T, id string) Source {
	s, ok := Default().Get(id)
	require.True(t, ok, id)
	return s
}

func TestExtractJSON(t *testing.T) {
	t.Run("free dictionary definitions", func(t *testing.T) {
		body := `[{"word":"happy","meanings":[
			{"partOfSpeech":"adjective","definitions":[{"definition":"Feeling pleasure."},{"definition":"Lucky."}]},
			{"partOfSpeech":"verb","definitions":[{"definition":"To become happy."}]}
		]}]`
		values, err := getSource(t, "free-dictionary").Extract([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, []string{"Feeling pleasure.", "To become happy."}, values)
	})
	t.Run("synonyms", func(t *testing.T) {
		body := `[{"word":"glad","score":100},{"word":"felicitous","score":90}]`
		values, err := getSource(t, "thesaurus").Extract([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, []string{"glad", "felicitous"}, values)
	})
	t.Run("no synonyms", func(t *testing.T) {
		values, err := getSource(t, "thesaurus").Extract([]byte(`[]`))
		require.NoError(t, err)
		assert.Empty(t, values)
	})
	t.Run("urban limit", func(t *testing.T) {
		body := `{"list":[{"definition":"one"},{"definition":"two"},{"definition":"three"},{"definition":"four"}]}`
		values, err := getSource(t, "urban").Extract([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, []string{"one", "two", "three"}, values)
	})
	t.Run("merriam-webster short definitions", func(t *testing.T) {
		body := `[{"meta":{"id":"happy"},"shortdef":["notably fortunate","enjoying well-being"]}]`
		values, err := getSource(t, "merriam-webster").Extract([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, []string{"notably fortunate; enjoying well-being"}, values)
	})
	t.Run("merriam-webster suggestions", func(t *testing.T) {
		values, err := getSource(t, "merriam-webster").Extract([]byte(`["happen","hap"]`))
		require.NoError(t, err)
		assert.Equal(t, []string{"Did you mean: happen"}, values)
	})
	t.Run("merriam-webster nothing", func(t *testing.T) {
		values, err := getSource(t, "merriam-webster").Extract([]byte(`[]`))
		require.NoError(t, err)
		assert.Empty(t, values)
	})
	t.Run("wiktionary markup", func(t *testing.T) {
		body := `{"en":[{"partOfSpeech":"Adjective","definitions":[
			{"definition":"Having a feeling arising from a <a href=\"/wiki/consciousness\">consciousness</a> of well-being &amp; joy."}
		]}]}`
		values, err := getSource(t, "wiktionary").Extract([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, []string{"Having a feeling arising from a consciousness of well-being & joy."}, values)
	})
	t.Run("malformed", func(t *testing.T) {
		_, err := getSource(t, "oxford").Extract([]byte("Invalid JSON"))
		assert.ErrorIs(t, err, ErrMalformed)
	})
	t.Run("objects are skipped", func(t *testing.T) {
		s := Source{Kind: KindJSON, Rule: Rule{Path: "items"}}
		values, err := s.Extract([]byte(`{"items":[{"a":1},"b",2,null]}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "2"}, values)
	})
}

func TestExtractHTML(t *testing.T) {
	t.Run("hindi first result", func(t *testing.T) {
		body := `<html><body><div class="dictionary_results">
			<div class="dict_result">  खुश
				(khush) </div>
			<div class="dict_result">प्रसन्न</div>
		</div></body></html>`
		values, err := getSource(t, "hindi").Extract([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, []string{"खुश (khush)"}, values)
	})
	t.Run("cambridge requires all classes", func(t *testing.T) {
		body := `<div class="def">partial</div><div class="def ddef_d db">feeling <b>pleasure</b></div>`
		values, err := getSource(t, "cambridge").Extract([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, []string{"feeling pleasure"}, values)
	})
	t.Run("no match", func(t *testing.T) {
		values, err := getSource(t, "urdu").Extract([]byte(`<html><p>nothing</p></html>`))
		require.NoError(t, err)
		assert.Empty(t, values)
	})
	t.Run("empty text is skipped", func(t *testing.T) {
		body := `<span class="meaning">   </span><span class="meaning">خوش</span>`
		values, err := getSource(t, "urdu").Extract([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, []string{"خوش"}, values)
	})
}

func TestRuleShape(t *testing.T) {
	r := Rule{Limit: 2, Prefix: "> "}
	assert.Equal(t, []string{"> a", "> b"}, r.shape([]string{" a ", "", "b", "c"}))
	assert.Nil(t, r.shape([]string{" ", ""}))
}
