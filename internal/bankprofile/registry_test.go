package bankprofile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fmoura/extrato-csv/internal/parsererror"
)

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry()

	for _, id := range []string{"generic", "santander", "itau", "bradesco", "bb", "caixa", "nubank"} {
		p, err := r.Get(id)
		require.NoError(t, err, "builtin profile %s should be registered", id)
		assert.Equal(t, id, p.ID)
		assert.NotEmpty(t, p.CreditKeywords)
		assert.NotEmpty(t, p.DebitKeywords)
		assert.NotEmpty(t, p.DatePatterns)
		assert.NotNil(t, p.ValuePattern)
	}
}

func TestRegistryUnknownBank(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("banco-inexistente")
	require.Error(t, err)

	var ube *parsererror.UnknownBankError
	require.ErrorAs(t, err, &ube)
	assert.Equal(t, "banco-inexistente", ube.Identifier)
	assert.Contains(t, ube.Available, "generic")
}

func TestRegistryKeywordsAreFolded(t *testing.T) {
	r := NewRegistry()
	p, err := r.Get("santander")
	require.NoError(t, err)

	for _, kw := range append(p.CreditKeywords, p.DebitKeywords...) {
		assert.Equal(t, kw, foldAll([]string{kw})[0], "keyword %q should already be folded", kw)
	}
	assert.Contains(t, p.CreditKeywords, "credito") // from "crédito"
}

func TestRegistryIDsSorted(t *testing.T) {
	r := NewRegistry()
	ids := r.IDs()
	assert.IsIncreasing(t, ids)
	assert.Len(t, r.All(), len(ids))
}

func TestAnyDateMatch(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.AnyDateMatch("01/08/2024 pix recebido"))
	assert.True(t, r.AnyDateMatch("15/08 saque"))
	assert.False(t, r.AnyDateMatch("texto sem datas"))
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "banks.yaml")
	content := `banks:
  - id: sicredi
    name: Sicredi
    code: "748"
    credit_keywords: ["Crédito Capital"]
    debit_keywords: ["Débito Conta Capital"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	r := NewRegistry()
	require.NoError(t, r.LoadOverrides(path))

	p, err := r.Get("sicredi")
	require.NoError(t, err)
	assert.Equal(t, "Sicredi", p.Name)
	assert.Equal(t, "748", p.Code)
	// custom keywords are folded and merged with the common base set
	assert.Contains(t, p.CreditKeywords, "credito capital")
	assert.Contains(t, p.DebitKeywords, "saque")
	assert.NotEmpty(t, p.DatePatterns)
}

func TestLoadOverridesErrors(t *testing.T) {
	r := NewRegistry()

	assert.Error(t, r.LoadOverrides(filepath.Join(t.TempDir(), "missing.yaml")))

	bad := filepath.Join(t.TempDir(), "banks.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("banks:\n  - name: sem id\n"), 0600))
	assert.Error(t, r.LoadOverrides(bad))
}
