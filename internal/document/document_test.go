package document

import (
	"bytes"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fmoura/extrato-csv/internal/parsererror"
)

// minimalPDF builds a valid single-page PDF in memory, computing the xref
// offsets while writing so the fixture stays well-formed.
func minimalPDF() []byte {
	var buf bytes.Buffer
	offsets := make([]int, 4)

	buf.WriteString("%PDF-1.4\n")
	offsets[1] = buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	offsets[2] = buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	offsets[3] = buf.Len()
	buf.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n")

	xref := buf.Len()
	buf.WriteString("xref\n0 4\n")
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= 3; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	buf.WriteString("trailer\n<< /Size 4 /Root 1 0 R >>\nstartxref\n")
	fmt.Fprintf(&buf, "%d\n", xref)
	buf.WriteString("%%EOF\n")

	return buf.Bytes()
}

func TestLoadEmpty(t *testing.T) {
	_, err := Load(nil)
	require.Error(t, err)

	var ide *parsererror.InvalidDocumentError
	assert.ErrorAs(t, err, &ide)
}

func TestLoadGarbage(t *testing.T) {
	_, err := Load([]byte("this is not a pdf at all, just some text"))
	require.Error(t, err)

	var ide *parsererror.InvalidDocumentError
	assert.ErrorAs(t, err, &ide)
}

func TestLoadMinimalPDF(t *testing.T) {
	doc, err := Load(minimalPDF())
	require.NoError(t, err)
	defer doc.Cleanup()

	assert.Equal(t, 1, doc.PageCount())
	assert.Len(t, doc.Hash(), 64)
	assert.Len(t, doc.Pages(), 1)
	assert.Equal(t, 1, doc.Page(1).Number)
	assert.Same(t, doc, doc.Page(1).Document())
}

func TestHashIsContentAddressed(t *testing.T) {
	data := minimalPDF()

	a, err := Load(data)
	require.NoError(t, err)
	b, err := Load(append([]byte{}, data...))
	require.NoError(t, err)

	assert.Equal(t, a.Hash(), b.Hash())
}

func TestTempFile(t *testing.T) {
	data := minimalPDF()
	doc, err := Load(data)
	require.NoError(t, err)

	path, err := doc.TempFile()
	require.NoError(t, err)

	again, err := doc.TempFile()
	require.NoError(t, err)
	assert.Equal(t, path, again, "temp file must be materialized once")

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)

	doc.Cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
