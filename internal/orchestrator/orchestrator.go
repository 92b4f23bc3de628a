// Package orchestrator drives a full extraction run: page text extraction
// through the strategy chain, per-page transaction recognition, daily
// aggregation and reconciliation. Runs are cached by document hash and bank.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fmoura/extrato-csv/internal/amountutils"
	"fmoura/extrato-csv/internal/analyzer"
	"fmoura/extrato-csv/internal/bankprofile"
	"fmoura/extrato-csv/internal/dateutils"
	"fmoura/extrato-csv/internal/document"
	"fmoura/extrato-csv/internal/extractor"
	"fmoura/extrato-csv/internal/logging"
	"fmoura/extrato-csv/internal/models"
	"fmoura/extrato-csv/internal/parsererror"
	"fmoura/extrato-csv/internal/recognizer"
	"fmoura/extrato-csv/internal/resultcache"
)

// State names a phase of the per-document run.
type State string

const (
	StateNotStarted  State = "not_started"
	StateExtracting  State = "extracting"
	StateRecognizing State = "recognizing"
	StateAggregating State = "aggregating"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

const (
	defaultWorkers     = 4
	defaultPageTimeout = 60 * time.Second

	// Pages sampled from the front of the document for statement-year
	// inference. Headers carrying the period live on the first pages.
	yearSamplePages = 3
)

// Options tunes a single run.
type Options struct {
	// EnableOCR appends the OCR strategy to the chain for scanned pages.
	EnableOCR bool
	// OCRLang is the tesseract language pack, default "por".
	OCRLang string
	// FillDateRange makes the daily summaries a continuous calendar range
	// with zero-valued days instead of a sparse sequence.
	FillDateRange bool
	// MinConfidence drops transactions below this confidence. Empty keeps all.
	MinConfidence models.Confidence
}

// Result is the finished output of one run.
type Result struct {
	RunID        string
	BankID       string
	State        State
	Year         int
	YearKnown    bool
	Transactions []models.Transaction
	Summaries    []models.DailySummary
	Statistics   models.Statistics
	PageStatuses []models.PageStatus
}

// Orchestrator executes extraction runs. Safe for concurrent use; all
// per-run state lives on the stack of Run.
type Orchestrator struct {
	logger      logging.Logger
	registry    *bankprofile.Registry
	cache       *resultcache.Cache
	checker     *extractor.Checker
	workers     int
	pageTimeout time.Duration

	// chainFor builds the strategy chain for a run. Replaceable in tests.
	chainFor func(opts Options) []extractor.Strategy
}

// New wires an orchestrator. cache may be nil to disable result caching.
func New(logger logging.Logger, registry *bankprofile.Registry, cache *resultcache.Cache) *Orchestrator {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Orchestrator{
		logger:      logger,
		registry:    registry,
		cache:       cache,
		checker:     extractor.NewChecker(registry),
		workers:     defaultWorkers,
		pageTimeout: defaultPageTimeout,
		chainFor: func(opts Options) []extractor.Strategy {
			return extractor.DefaultChain(opts.EnableOCR, opts.OCRLang)
		},
	}
}

// SetWorkers bounds the page extraction pool. n<=0 keeps the default.
func (o *Orchestrator) SetWorkers(n int) {
	if n > 0 {
		o.workers = n
	}
}

// SetPageTimeout bounds the full strategy chain per page.
func (o *Orchestrator) SetPageTimeout(d time.Duration) {
	if d > 0 {
		o.pageTimeout = d
	}
}

// SetChain replaces the strategy chain factory.
func (o *Orchestrator) SetChain(chainFor func(opts Options) []extractor.Strategy) {
	if chainFor != nil {
		o.chainFor = chainFor
	}
}

// Run processes one document under the named bank profile. The bank is
// validated before any page work; repeated runs on the same bytes and bank
// are served from the cache when one is configured. The cache holds the
// canonical result (all transactions, sparse summaries); the confidence
// filter and range fill are applied per call so differing Options never see
// each other's output.
func (o *Orchestrator) Run(ctx context.Context, data []byte, bankID string, opts Options) (*Result, error) {
	profile, err := o.registry.Get(bankID)
	if err != nil {
		return nil, err
	}

	doc, err := document.Load(data)
	if err != nil {
		return nil, err
	}
	defer doc.Cleanup()

	if o.cache == nil {
		result, err := o.execute(ctx, doc, profile, opts)
		if err != nil {
			return nil, err
		}
		return applyOptions(result, opts), nil
	}

	value, err := o.cache.GetOrCompute(cacheKey(doc, profile, opts), func() (interface{}, error) {
		return o.execute(ctx, doc, profile, opts)
	})
	if err != nil {
		return nil, err
	}
	return applyOptions(value.(*Result), opts), nil
}

// cacheKey derives the cache key for a run. Options that change what gets
// extracted (OCR) are part of the key; output options (confidence filter,
// range fill) are applied after retrieval and stay out of it.
func cacheKey(doc *document.Document, profile *bankprofile.Profile, opts Options) string {
	key := resultcache.Key(doc.Hash(), profile.ID)
	if opts.EnableOCR {
		key += ":ocr:" + opts.OCRLang
	}
	return key
}

func (o *Orchestrator) execute(ctx context.Context, doc *document.Document, profile *bankprofile.Profile, opts Options) (*Result, error) {
	result := &Result{
		RunID:  uuid.NewString(),
		BankID: profile.ID,
		State:  StateNotStarted,
	}
	log := o.logger.WithField(logging.FieldRunID, result.RunID).
		WithField(logging.FieldBank, profile.ID)

	started := time.Now()
	log.Info("Starting extraction run",
		logging.Field{Key: logging.FieldCount, Value: doc.PageCount()})

	result.State = StateExtracting
	texts, statuses, err := o.extractPages(ctx, log, doc, opts)
	if err != nil {
		result.State = StateFailed
		return nil, err
	}
	result.PageStatuses = statuses

	readable := 0
	for _, t := range texts {
		if t != "" {
			readable++
		}
	}
	if readable == 0 {
		result.State = StateFailed
		return nil, &parsererror.NoExtractableTextError{Pages: doc.PageCount()}
	}

	result.Year, result.YearKnown = o.inferYear(texts)

	result.State = StateRecognizing
	rec := recognizer.New(o.logger, profile, result.Year, result.YearKnown)
	for i, text := range texts {
		if text == "" {
			continue
		}
		page := i + 1
		result.Transactions = append(result.Transactions, rec.Recognize(text, page)...)
	}
	result.State = StateAggregating
	result.Summaries = analyzer.Summarize(result.Transactions)
	result.Statistics = analyzer.Statistics(result.Transactions)

	if expected, actual, ok := analyzer.Reconcile(result.Transactions, result.Summaries); !ok {
		result.State = StateFailed
		return nil, &parsererror.AggregationError{
			Expected: amountutils.FormatBRL(expected),
			Actual:   amountutils.FormatBRL(actual),
		}
	}

	result.State = StateDone
	log.Info("Extraction run finished",
		logging.Field{Key: logging.FieldCount, Value: len(result.Transactions)},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(started).String()})
	return result, nil
}

// extractPages runs the strategy chain over all pages on a bounded pool.
// A page where every strategy fails or yields implausible text is marked
// unreadable with an empty text slot; the run continues.
func (o *Orchestrator) extractPages(ctx context.Context, log logging.Logger, doc *document.Document, opts Options) ([]string, []models.PageStatus, error) {
	chain := o.chainFor(opts)

	count := doc.PageCount()
	texts := make([]string, count)
	statuses := make([]models.PageStatus, count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			page := doc.Page(i + 1)

			pctx, cancel := context.WithTimeout(gctx, o.pageTimeout)
			defer cancel()

			text, method := o.extractPage(pctx, log, page, chain)
			texts[i] = text
			status := models.PageOK
			if text == "" {
				status = models.PageUnreadable
			}
			statuses[i] = models.PageStatus{
				Page:   i + 1,
				Method: method,
				Status: status,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("page extraction aborted: %w", err)
	}
	return texts, statuses, nil
}

// extractPage walks the chain until a strategy yields plausible text.
// Returns ("", MethodNone) when the page is unreadable.
func (o *Orchestrator) extractPage(ctx context.Context, log logging.Logger, page document.Page, chain []extractor.Strategy) (string, models.ExtractionMethod) {
	for _, strategy := range chain {
		if !strategy.Available() {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		res, err := strategy.Extract(ctx, page)
		if err != nil {
			log.WithError(&parsererror.PageExtractionError{
				Page:   page.Number,
				Method: string(strategy.Method()),
				Err:    err,
			}).Debug("Extraction strategy failed",
				logging.Field{Key: logging.FieldPage, Value: page.Number},
				logging.Field{Key: logging.FieldMethod, Value: string(strategy.Method())})
			continue
		}
		if !o.checker.Plausible(res.Text) {
			log.Debug("Extracted text failed plausibility check",
				logging.Field{Key: logging.FieldPage, Value: page.Number},
				logging.Field{Key: logging.FieldMethod, Value: string(strategy.Method())})
			continue
		}
		return res.Text, strategy.Method()
	}

	log.Warn("Page unreadable by all strategies",
		logging.Field{Key: logging.FieldPage, Value: page.Number})
	return "", models.MethodNone
}

// inferYear samples the front pages for the statement year.
func (o *Orchestrator) inferYear(texts []string) (int, bool) {
	var sample strings.Builder
	sampled := 0
	for _, text := range texts {
		if text == "" {
			continue
		}
		sample.WriteString(text)
		sample.WriteByte('\n')
		sampled++
		if sampled == yearSamplePages {
			break
		}
	}

	year, ok := dateutils.InferStatementYear(sample.String())
	if !ok {
		o.logger.Warn("Statement year could not be inferred, using sentinel")
		return models.UnknownYear, false
	}
	o.logger.Debug("Inferred statement year",
		logging.Field{Key: logging.FieldYear, Value: year})
	return year, true
}

// applyOptions derives the caller-visible result from the canonical one.
// The canonical result may be cached and shared across runs, so
// option-dependent views are built on a copy and never mutate it.
func applyOptions(canonical *Result, opts Options) *Result {
	filterHigh := opts.MinConfidence == models.ConfidenceHigh
	if !filterHigh && !opts.FillDateRange {
		return canonical
	}

	result := *canonical
	if filterHigh {
		kept := make([]models.Transaction, 0, len(canonical.Transactions))
		for _, tx := range canonical.Transactions {
			if tx.Confidence == models.ConfidenceHigh {
				kept = append(kept, tx)
			}
		}
		result.Transactions = kept
		result.Statistics = analyzer.Statistics(kept)
	}
	if opts.FillDateRange {
		result.Summaries = analyzer.SummarizeRange(result.Transactions)
	} else {
		result.Summaries = analyzer.Summarize(result.Transactions)
	}
	return &result
}
