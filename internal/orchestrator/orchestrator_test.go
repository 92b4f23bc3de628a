package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fmoura/extrato-csv/internal/bankprofile"
	"fmoura/extrato-csv/internal/document"
	"fmoura/extrato-csv/internal/extractor"
	"fmoura/extrato-csv/internal/logging"
	"fmoura/extrato-csv/internal/models"
	"fmoura/extrato-csv/internal/parsererror"
	"fmoura/extrato-csv/internal/resultcache"
)

// minimalPDF builds a valid PDF with the given number of empty pages,
// computing xref offsets while writing.
func minimalPDF(pages int) []byte {
	var buf bytes.Buffer
	total := 2 + pages
	offsets := make([]int, total+1)

	kids := ""
	for i := 0; i < pages; i++ {
		if i > 0 {
			kids += " "
		}
		kids += fmt.Sprintf("%d 0 R", 3+i)
	}

	buf.WriteString("%PDF-1.4\n")
	offsets[1] = buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	offsets[2] = buf.Len()
	fmt.Fprintf(&buf, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", kids, pages)
	for i := 0; i < pages; i++ {
		offsets[3+i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n", 3+i)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", total+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= total; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total+1, xref)

	return buf.Bytes()
}

// fakeStrategy serves canned text per page.
type fakeStrategy struct {
	method    models.ExtractionMethod
	available bool
	texts     map[int]string
	err       error
	calls     int32
}

func (f *fakeStrategy) Method() models.ExtractionMethod { return f.method }
func (f *fakeStrategy) Available() bool                 { return f.available }

func (f *fakeStrategy) Extract(_ context.Context, page document.Page) (extractor.Result, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return extractor.Result{}, f.err
	}
	return extractor.Result{Text: f.texts[page.Number], Method: f.method}, nil
}

func newTestOrchestrator(cache *resultcache.Cache, strategies ...extractor.Strategy) *Orchestrator {
	o := New(&logging.MockLogger{}, bankprofile.NewRegistry(), cache)
	o.SetChain(func(Options) []extractor.Strategy { return strategies })
	return o
}

const pageOneText = "Período: 01/08/2024 a 31/08/2024\n" +
	"01/08 PIX recebido R$ 500,00\n" +
	"02/08 Pagamento boleto R$ 120,00\n"

func TestRunUnknownBankFailsBeforePageWork(t *testing.T) {
	fake := &fakeStrategy{method: models.MethodText, available: true}
	o := newTestOrchestrator(nil, fake)

	_, err := o.Run(context.Background(), []byte("not even a pdf"), "banco-inexistente", Options{})
	require.Error(t, err)

	var ube *parsererror.UnknownBankError
	assert.ErrorAs(t, err, &ube, "bank validation must run before the document is touched")
	assert.Equal(t, int32(0), atomic.LoadInt32(&fake.calls))
}

func TestRunCorruptDocument(t *testing.T) {
	o := newTestOrchestrator(nil, &fakeStrategy{method: models.MethodText, available: true})

	_, err := o.Run(context.Background(), []byte("garbage bytes"), "generic", Options{})
	require.Error(t, err)

	var ide *parsererror.InvalidDocumentError
	assert.ErrorAs(t, err, &ide)
}

func TestRunHappyPath(t *testing.T) {
	fake := &fakeStrategy{
		method:    models.MethodText,
		available: true,
		texts:     map[int]string{1: pageOneText},
	}
	o := newTestOrchestrator(nil, fake)

	result, err := o.Run(context.Background(), minimalPDF(1), "generic", Options{})
	require.NoError(t, err)

	assert.Equal(t, StateDone, result.State)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "generic", result.BankID)
	assert.Equal(t, 2024, result.Year)
	assert.True(t, result.YearKnown)

	require.Len(t, result.Transactions, 2)
	assert.Equal(t, models.DirectionCredit, result.Transactions[0].Direction)
	assert.Equal(t, models.DirectionDebit, result.Transactions[1].Direction)

	require.Len(t, result.Summaries, 2)
	assert.True(t, decimal.NewFromInt(380).Equal(result.Statistics.FinalBalance))

	require.Len(t, result.PageStatuses, 1)
	assert.Equal(t, models.PageOK, result.PageStatuses[0].Status)
	assert.Equal(t, models.MethodText, result.PageStatuses[0].Method)
}

func TestRunStrategyFallback(t *testing.T) {
	broken := &fakeStrategy{method: models.MethodText, available: true, err: errors.New("no text layer")}
	layout := &fakeStrategy{
		method:    models.MethodLayout,
		available: true,
		texts:     map[int]string{1: pageOneText},
	}
	o := newTestOrchestrator(nil, broken, layout)

	result, err := o.Run(context.Background(), minimalPDF(1), "generic", Options{})
	require.NoError(t, err)

	assert.Equal(t, models.MethodLayout, result.PageStatuses[0].Method)
	assert.Len(t, result.Transactions, 2)
}

func TestRunUnavailableStrategySkipped(t *testing.T) {
	offline := &fakeStrategy{method: models.MethodOCR, available: false}
	text := &fakeStrategy{
		method:    models.MethodText,
		available: true,
		texts:     map[int]string{1: pageOneText},
	}
	o := newTestOrchestrator(nil, offline, text)

	result, err := o.Run(context.Background(), minimalPDF(1), "generic", Options{})
	require.NoError(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&offline.calls))
	assert.Equal(t, models.MethodText, result.PageStatuses[0].Method)
}

func TestRunPartialSuccessWithUnreadablePage(t *testing.T) {
	fake := &fakeStrategy{
		method:    models.MethodText,
		available: true,
		texts:     map[int]string{1: pageOneText}, // page 2 yields nothing
	}
	o := newTestOrchestrator(nil, fake)

	result, err := o.Run(context.Background(), minimalPDF(2), "generic", Options{})
	require.NoError(t, err, "a document with some unreadable pages is a partial success")

	assert.Equal(t, StateDone, result.State)
	require.Len(t, result.PageStatuses, 2)
	assert.Equal(t, models.PageOK, result.PageStatuses[0].Status)
	assert.Equal(t, models.PageUnreadable, result.PageStatuses[1].Status)
	assert.Equal(t, models.MethodNone, result.PageStatuses[1].Method)
	assert.Len(t, result.Transactions, 2)
}

func TestRunAllPagesUnreadable(t *testing.T) {
	fake := &fakeStrategy{method: models.MethodText, available: true}
	o := newTestOrchestrator(nil, fake)

	_, err := o.Run(context.Background(), minimalPDF(2), "generic", Options{})
	require.Error(t, err)

	var nete *parsererror.NoExtractableTextError
	require.ErrorAs(t, err, &nete)
	assert.Equal(t, 2, nete.Pages)
}

func TestRunMinConfidenceFilter(t *testing.T) {
	text := "Período: 01/08/2024 a 31/08/2024\n" +
		"01/08 PIX recebido R$ 500,00\n" +
		"03/08 -R$ 75,00\n" // sign fallback, low confidence
	fake := &fakeStrategy{method: models.MethodText, available: true, texts: map[int]string{1: text}}

	o := newTestOrchestrator(nil, fake)
	result, err := o.Run(context.Background(), minimalPDF(1), "generic", Options{MinConfidence: models.ConfidenceHigh})
	require.NoError(t, err)

	require.Len(t, result.Transactions, 1)
	assert.Equal(t, models.ConfidenceHigh, result.Transactions[0].Confidence)
}

func TestRunFillDateRange(t *testing.T) {
	text := "Período: 01/08/2024 a 31/08/2024\n" +
		"01/08 PIX recebido R$ 500,00\n" +
		"04/08 Pagamento boleto R$ 100,00\n"
	fake := &fakeStrategy{method: models.MethodText, available: true, texts: map[int]string{1: text}}

	o := newTestOrchestrator(nil, fake)
	result, err := o.Run(context.Background(), minimalPDF(1), "generic", Options{FillDateRange: true})
	require.NoError(t, err)

	require.Len(t, result.Summaries, 4)
	assert.True(t, result.Summaries[1].NetBalance.IsZero())
	assert.True(t, result.Summaries[2].NetBalance.IsZero())
}

func TestRunServesRepeatsFromCache(t *testing.T) {
	fake := &fakeStrategy{
		method:    models.MethodText,
		available: true,
		texts:     map[int]string{1: pageOneText},
	}
	cache := resultcache.New(&logging.MockLogger{}, time.Minute)
	o := newTestOrchestrator(cache, fake)

	data := minimalPDF(1)
	first, err := o.Run(context.Background(), data, "generic", Options{})
	require.NoError(t, err)
	callsAfterFirst := atomic.LoadInt32(&fake.calls)

	second, err := o.Run(context.Background(), data, "generic", Options{})
	require.NoError(t, err)

	assert.Equal(t, first.RunID, second.RunID, "repeat run must be served from cache")
	assert.Equal(t, callsAfterFirst, atomic.LoadInt32(&fake.calls))
}

func TestRunCachedResultRespectsMinConfidence(t *testing.T) {
	text := "Período: 01/08/2024 a 31/08/2024\n" +
		"01/08 PIX recebido R$ 500,00\n" +
		"03/08 -R$ 75,00\n" // sign fallback, low confidence
	fake := &fakeStrategy{method: models.MethodText, available: true, texts: map[int]string{1: text}}
	cache := resultcache.New(&logging.MockLogger{}, time.Minute)
	o := newTestOrchestrator(cache, fake)

	data := minimalPDF(1)
	first, err := o.Run(context.Background(), data, "generic", Options{})
	require.NoError(t, err)
	require.Len(t, first.Transactions, 2)

	second, err := o.Run(context.Background(), data, "generic", Options{MinConfidence: models.ConfidenceHigh})
	require.NoError(t, err)
	require.Len(t, second.Transactions, 1, "cached run must still honor the confidence filter")
	assert.Equal(t, models.ConfidenceHigh, second.Transactions[0].Confidence)
	assert.Equal(t, first.RunID, second.RunID)

	// the canonical cached result stays intact for later unfiltered runs
	third, err := o.Run(context.Background(), data, "generic", Options{})
	require.NoError(t, err)
	assert.Len(t, third.Transactions, 2)
}

func TestRunCachedResultRespectsFillDateRange(t *testing.T) {
	text := "Período: 01/08/2024 a 31/08/2024\n" +
		"01/08 PIX recebido R$ 500,00\n" +
		"04/08 Pagamento boleto R$ 100,00\n"
	fake := &fakeStrategy{method: models.MethodText, available: true, texts: map[int]string{1: text}}
	cache := resultcache.New(&logging.MockLogger{}, time.Minute)
	o := newTestOrchestrator(cache, fake)

	data := minimalPDF(1)
	first, err := o.Run(context.Background(), data, "generic", Options{})
	require.NoError(t, err)
	require.Len(t, first.Summaries, 2)
	callsAfterFirst := atomic.LoadInt32(&fake.calls)

	second, err := o.Run(context.Background(), data, "generic", Options{FillDateRange: true})
	require.NoError(t, err)
	require.Len(t, second.Summaries, 4, "cached run must still honor the range fill")
	assert.True(t, second.Summaries[1].NetBalance.IsZero())
	assert.Equal(t, callsAfterFirst, atomic.LoadInt32(&fake.calls), "range fill must not trigger re-extraction")
}
