package textutils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFold(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"Accents", "Depósito", "deposito"},
		{"MixedCase", "TRANSFERÊNCIA Recebida", "transferencia recebida"},
		{"Cedilla", "Aplicação", "aplicacao"},
		{"Plain", "pix", "pix"},
		{"Empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Fold(tc.input))
		})
	}
}

func TestNearestKeyword(t *testing.T) {
	// value span covers "500,00"
	text := "pix recebido 500,00 pagamento boleto"
	spanStart := strings.Index(text, "500,00")
	spanEnd := spanStart + len("500,00")

	hit, ok := NearestKeyword(text, []string{"recebido", "pagamento"}, spanStart, spanEnd)
	require.True(t, ok)
	assert.Equal(t, "recebido", hit.Keyword)

	hit, ok = NearestKeyword(text, []string{"pagamento"}, spanStart, spanEnd)
	require.True(t, ok)
	assert.Equal(t, 1, hit.Distance)

	_, ok = NearestKeyword(text, []string{"saque"}, spanStart, spanEnd)
	assert.False(t, ok)
}

func TestNearestKeywordOverlapIsZeroDistance(t *testing.T) {
	text := "deposito 100,00"
	hit, ok := NearestKeyword(text, []string{"deposito"}, 0, len(text))
	require.True(t, ok)
	assert.Equal(t, 0, hit.Distance)
}

func TestNearestKeywordTiePrefersEarlier(t *testing.T) {
	// both keywords sit exactly one char from the span
	text := "ab 11,11 cd"
	hit, ok := NearestKeyword(text, []string{"ab", "cd"}, 3, 8)
	require.True(t, ok)
	assert.Equal(t, "ab", hit.Keyword)
	assert.Equal(t, 0, hit.Index)
}

func TestNearestKeywordSamePositionPrefersLonger(t *testing.T) {
	text := "r$ 100,00 dinheiro guardado resgatado"
	keywords := []string{"dinheiro guardado", "dinheiro guardado resgatado"}

	hit, ok := NearestKeyword(text, keywords, 0, 9)
	require.True(t, ok)
	assert.Equal(t, "dinheiro guardado resgatado", hit.Keyword)
	assert.Equal(t, 10, hit.Index)
	assert.Equal(t, 1, hit.Distance)
}

func TestKeywordHitOverlaps(t *testing.T) {
	long := KeywordHit{Keyword: "dinheiro guardado resgatado", Index: 10}
	short := KeywordHit{Keyword: "dinheiro guardado", Index: 10}
	apart := KeywordHit{Keyword: "pagamento", Index: 50}

	assert.True(t, long.Overlaps(short))
	assert.True(t, short.Overlaps(long))
	assert.False(t, long.Overlaps(apart))
}

func TestContainsAny(t *testing.T) {
	assert.True(t, ContainsAny("pagamento de boleto", []string{"boleto", "saque"}))
	assert.False(t, ContainsAny("pagamento de boleto", []string{"pix"}))
	assert.False(t, ContainsAny("pagamento", nil))
}

func TestPrintableDensity(t *testing.T) {
	assert.InDelta(t, 1.0, PrintableDensity("Saldo em 01/08/2024: R$ 1.234,56"), 0.001)
	assert.Less(t, PrintableDensity("\x00\x01\x02\x03 a"), 0.5)
	assert.Equal(t, 0.0, PrintableDensity(""))
}
