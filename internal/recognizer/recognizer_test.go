package recognizer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fmoura/extrato-csv/internal/bankprofile"
	"fmoura/extrato-csv/internal/logging"
	"fmoura/extrato-csv/internal/models"
)

func genericProfile(t *testing.T) *bankprofile.Profile {
	t.Helper()
	p, err := bankprofile.NewRegistry().Get(bankprofile.GenericID)
	require.NoError(t, err)
	return p
}

func newTestRecognizer(t *testing.T, year int, yearKnown bool) *Recognizer {
	t.Helper()
	return New(&logging.MockLogger{}, genericProfile(t), year, yearKnown)
}

func TestRecognizeKeywordNearerWins(t *testing.T) {
	r := newTestRecognizer(t, 2024, true)

	txs := r.Recognize("01/08 PIX recebido R$ 500,00 em conta Pagamento boleto", 1)
	require.Len(t, txs, 1)

	tx := txs[0]
	assert.Equal(t, models.DirectionCredit, tx.Direction)
	assert.Equal(t, models.ConfidenceHigh, tx.Confidence)
	assert.True(t, decimal.NewFromInt(500).Equal(tx.Amount))
	assert.Equal(t, 2024, tx.Date.Year())
	assert.Equal(t, 1, tx.Date.Day())
	assert.True(t, tx.YearInferred)
	assert.Equal(t, 1, tx.Page)
}

func TestRecognizeExactTieDefaultsToDebit(t *testing.T) {
	r := newTestRecognizer(t, 2024, true)

	// "PIX recebido" and "Pagamento" are both one character from the value
	txs := r.Recognize("01/08 PIX recebido R$ 500,00 Pagamento boleto", 1)
	require.Len(t, txs, 1)
	assert.Equal(t, models.DirectionDebit, txs[0].Direction)
	assert.Equal(t, models.ConfidenceHigh, txs[0].Confidence)
}

func TestRecognizePrefixKeywordPrefersLongerMatch(t *testing.T) {
	// nubank lists "dinheiro guardado" as debit and "dinheiro guardado
	// resgatado" as credit; both match at the same spot with equal distance
	p, err := bankprofile.NewRegistry().Get("nubank")
	require.NoError(t, err)
	r := New(&logging.MockLogger{}, p, 2024, true)

	txs := r.Recognize("05/08 R$ 150,00 Dinheiro guardado resgatado", 1)
	require.Len(t, txs, 1)
	assert.Equal(t, models.DirectionCredit, txs[0].Direction)
	assert.Equal(t, models.ConfidenceHigh, txs[0].Confidence)

	txs = r.Recognize("06/08 R$ 80,00 Dinheiro guardado", 1)
	require.Len(t, txs, 1)
	assert.Equal(t, models.DirectionDebit, txs[0].Direction)
}

func TestRecognizeSignFallback(t *testing.T) {
	r := newTestRecognizer(t, 2024, true)

	txs := r.Recognize("15/08 -R$ 200,00", 1)
	require.Len(t, txs, 1)

	tx := txs[0]
	assert.Equal(t, models.DirectionDebit, tx.Direction)
	assert.Equal(t, models.ConfidenceLow, tx.Confidence)
	assert.True(t, decimal.NewFromInt(200).Equal(tx.Amount), "amount is stored as a magnitude, got %s", tx.Amount)
	assert.True(t, decimal.NewFromInt(-200).Equal(tx.SignedAmount()))
}

func TestRecognizeAccentInsensitiveKeywords(t *testing.T) {
	r := newTestRecognizer(t, 2024, true)

	txs := r.Recognize("03/08 Depósito em dinheiro R$ 1.234,56", 1)
	require.Len(t, txs, 1)
	assert.Equal(t, models.DirectionCredit, txs[0].Direction)
	assert.Equal(t, models.ConfidenceHigh, txs[0].Confidence)
	assert.Equal(t, "03/08 Depósito em dinheiro R$ 1.234,56", txs[0].Description)
}

func TestRecognizeSkipsNoiseLines(t *testing.T) {
	r := newTestRecognizer(t, 2024, true)

	text := "01/08 PIX recebido R$ 500,00\n" +
		"SALDO DO DIA 1.500,00\n" +
		"SALDO ANTERIOR 1.000,00\n" +
		"Página 1 de 3\n"
	txs := r.Recognize(text, 1)
	require.Len(t, txs, 1)
	assert.True(t, decimal.NewFromInt(500).Equal(txs[0].Amount))
}

func TestRecognizeMagnitudeBounds(t *testing.T) {
	r := newTestRecognizer(t, 2024, true)

	assert.Empty(t, r.Recognize("01/08 deposito R$ 0,50", 1))
	assert.Empty(t, r.Recognize("01/08 deposito R$ 99.000.000,00", 1))
}

func TestRecognizeRejectsValueInsideDigitRun(t *testing.T) {
	r := newTestRecognizer(t, 2024, true)

	// the ",00" tail of a long code must not parse as a value
	assert.Empty(t, r.Recognize("01/08 autenticacao 9914500,0012", 1))
}

func TestRecognizeMultipleWindows(t *testing.T) {
	r := newTestRecognizer(t, 2024, true)

	text := "01/08 PIX recebido R$ 100,00\n02/08 Pagamento boleto R$ 50,00"
	txs := r.Recognize(text, 2)
	require.Len(t, txs, 2)

	assert.Equal(t, 1, txs[0].Date.Day())
	assert.Equal(t, models.DirectionCredit, txs[0].Direction)
	assert.Equal(t, 2, txs[1].Date.Day())
	assert.Equal(t, models.DirectionDebit, txs[1].Direction)
	assert.Equal(t, 2, txs[0].Page)
}

func TestRecognizeSentinelYear(t *testing.T) {
	r := newTestRecognizer(t, 0, false)

	txs := r.Recognize("05/08 deposito R$ 100,00", 1)
	require.Len(t, txs, 1)
	assert.Equal(t, models.UnknownYear, txs[0].Date.Year())
	assert.True(t, txs[0].YearInferred)
}

func TestRecognizeStatementYearOverridesOutlier(t *testing.T) {
	r := newTestRecognizer(t, 2024, true)

	txs := r.Recognize("01/08/1999 deposito R$ 100,00", 1)
	require.Len(t, txs, 1)
	assert.Equal(t, 2024, txs[0].Date.Year())
}

func TestRecognizeTwoDigitYear(t *testing.T) {
	r := newTestRecognizer(t, 2024, true)

	txs := r.Recognize("01/08/24 deposito R$ 100,00", 1)
	require.Len(t, txs, 1)
	assert.Equal(t, 2024, txs[0].Date.Year())
	assert.False(t, txs[0].YearInferred)
}

func TestRecognizeFamilyLockAcrossPages(t *testing.T) {
	r := newTestRecognizer(t, 2024, true)

	first := r.Recognize("01/08/2024 deposito R$ 100,00", 1)
	require.Len(t, first, 1)

	// the full-date family is now locked; a page with only short dates
	// yields nothing instead of reinterpreting under a looser family
	second := r.Recognize("02/08 deposito R$ 100,00", 2)
	assert.Empty(t, second)
}

func TestRecognizeInvalidDateOpensNoWindow(t *testing.T) {
	r := newTestRecognizer(t, 2024, true)

	assert.Empty(t, r.Recognize("31/02 deposito R$ 100,00", 1))
	assert.Empty(t, r.Recognize("sem data deposito R$ 100,00", 1))
	assert.Empty(t, r.Recognize("", 1))
}
