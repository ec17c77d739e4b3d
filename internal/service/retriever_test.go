package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katakuxiko/polity-linker/internal/corpus"
	"github.com/katakuxiko/polity-linker/internal/model"
	"github.com/katakuxiko/polity-linker/internal/pdf/pdftest"
)

func mustCorpus(t *testing.T, text string) *corpus.Corpus {
	t.Helper()
	c, err := corpus.New("test", text)
	require.NoError(t, err)
	return c
}

func TestFindPresidentExample(t *testing.T) {
	c := mustCorpus(t, "The President is elected by an electoral college. The President serves a five-year term.")

	got, err := NewRetriever(0).Find(c, "President")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "The President is elected by an electoral college.", got[0].Text)
	assert.Equal(t, "The President serves a five-year term.", got[1].Text)
	assert.Less(t, got[0].Offset, got[1].Offset)
}

func TestFindInPDFCorpus(t *testing.T) {
	path := pdftest.Write(t, pdftest.Page{
		Content: "BT /F1 12 Tf 72 720 Td (CHAPTER 1: Parliament) Tj 0 -14 Td (A Money Bill is introduced in the Lok Sabha.) Tj ET",
	})
	c, err := corpus.Load(path)
	require.NoError(t, err)

	got, err := NewRetriever(0).Find(c, "money bill")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Parliament", got[0].Chapter)
	assert.Equal(t, "A Money Bill is introduced in the Lok Sabha.", got[0].Text)
}

func TestFindNoMatch(t *testing.T) {
	c := mustCorpus(t, "no relevant text here")

	got, err := NewRetriever(0).Find(c, "Judiciary")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFindCounts(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		query  string
		want   int
		offset []int
	}{
		{name: "mixed case", text: "Money Bill. money bill. MONEY BILL.", query: "money bill", want: 3, offset: []int{0, 12, 24}},
		{name: "query is trimmed", text: "CAG audits. The CAG reports.", query: "  cag ", want: 2, offset: []int{0, 16}},
		{name: "non overlapping", text: "aaaa", query: "aa", want: 2, offset: []int{0, 2}},
		{name: "inside words", text: "Federalism and federal units.", query: "federal", want: 2, offset: []int{0, 15}},
		{name: "unicode", text: "Ärzte. ärzte.", query: "ÄRZTE", want: 2, offset: []int{0, 8}},
		{name: "query longer than text", text: "Bill", query: "Money Bill", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustCorpus(t, tt.text)
			got, err := NewRetriever(0).Find(c, tt.query)
			require.NoError(t, err)
			require.Len(t, got, tt.want)
			for i, m := range got {
				assert.Equal(t, tt.offset[i], m.Offset)
				assert.True(t, strings.EqualFold(strings.TrimSpace(tt.query), m.Term))
			}
		})
	}
}

func TestFindEmptyQuery(t *testing.T) {
	c := mustCorpus(t, "text")
	_, err := NewRetriever(0).Find(c, "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestFindInvalidUTF8Query(t *testing.T) {
	c := mustCorpus(t, "Bill \xff passed. Bill \xfe failed.")

	got, err := NewRetriever(0).Find(c, "Bill \xff")
	assert.ErrorIs(t, err, ErrInvalidQuery)
	assert.Empty(t, got)

	got, err = NewRetriever(0).Find(c, "Bill")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFindWindowClamp(t *testing.T) {
	long := strings.Repeat("x ", 100) + "Governor" + strings.Repeat(" y", 100)
	c := mustCorpus(t, long)

	got, err := NewRetriever(10).Find(c, "governor")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "x x x x x Governor y y y y y", got[0].Text)
}

func TestFindStopsAtParagraphAndChapter(t *testing.T) {
	text := "Intro line without stop\n\nThe Speaker presides\nover the House\n\nNext paragraph.\nCHAPTER 2: Judiciary\nThe Speaker is not a judge."
	c := mustCorpus(t, text)

	got, err := NewRetriever(0).Find(c, "speaker")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "The Speaker presides over the House", got[0].Text)
	assert.Equal(t, model.UnknownChapter, got[0].Chapter)
	assert.Equal(t, "The Speaker is not a judge.", got[1].Text)
	assert.Equal(t, "Judiciary", got[1].Chapter)
}

func TestGroupByChapter(t *testing.T) {
	matches := []model.Match{
		{Offset: 1, Chapter: "Executive"},
		{Offset: 5, Chapter: "Parliament"},
		{Offset: 9, Chapter: "Executive"},
	}
	got := GroupByChapter(matches)
	require.Len(t, got, 2)
	assert.Equal(t, "Executive", got[0].Chapter)
	assert.Len(t, got[0].Matches, 2)
	assert.Equal(t, "Parliament", got[1].Chapter)
	assert.Empty(t, GroupByChapter(nil))
}
