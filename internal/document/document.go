// Package document models a loaded statement: an ordered sequence of pages
// over immutable raw bytes. A Document is owned by one extraction run and is
// never mutated by the strategies that read it.
package document

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"

	"github.com/ledongthuc/pdf"

	"fmoura/extrato-csv/internal/parsererror"
)

// Document wraps the raw statement bytes with a parsed PDF reader and a
// content hash used as the cache key component.
type Document struct {
	data   []byte
	hash   string
	reader *pdf.Reader

	tempOnce sync.Once
	tempPath string
	tempErr  error
}

// Page is a handle to one page of a document. Pages are 1-based, matching
// the PDF page numbering users see.
type Page struct {
	Number int
	doc    *Document
}

// Load parses raw bytes into a Document. Empty or unparseable input yields
// an InvalidDocumentError before any extraction work starts.
func Load(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, &parsererror.InvalidDocumentError{Reason: "document is empty"}
	}

	reader, err := openReader(data)
	if err != nil {
		return nil, &parsererror.InvalidDocumentError{Reason: "not a readable PDF", Err: err}
	}
	if reader.NumPage() == 0 {
		return nil, &parsererror.InvalidDocumentError{Reason: "document has no pages"}
	}

	sum := sha256.Sum256(data)
	return &Document{
		data:   data,
		hash:   hex.EncodeToString(sum[:]),
		reader: reader,
	}, nil
}

// openReader isolates the PDF library behind a recover, since malformed
// input can panic deep inside the parser.
func openReader(data []byte) (reader *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// Hash returns the hex SHA-256 of the raw bytes.
func (d *Document) Hash() string {
	return d.hash
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.reader.NumPage()
}

// Page returns a handle to the 1-based page i.
func (d *Document) Page(i int) Page {
	return Page{Number: i, doc: d}
}

// Pages returns handles to every page in order.
func (d *Document) Pages() []Page {
	pages := make([]Page, 0, d.PageCount())
	for i := 1; i <= d.PageCount(); i++ {
		pages = append(pages, d.Page(i))
	}
	return pages
}

// TempFile materializes the document on disk once and returns its path.
// Only the optical-recognition strategy needs a file (its external tools
// cannot read from memory), so the write is deferred until first use.
func (d *Document) TempFile() (string, error) {
	d.tempOnce.Do(func() {
		f, err := os.CreateTemp("", "extrato-*.pdf")
		if err != nil {
			d.tempErr = fmt.Errorf("creating temp document file: %w", err)
			return
		}
		if _, err := f.Write(d.data); err != nil {
			f.Close()
			d.tempErr = fmt.Errorf("writing temp document file: %w", err)
			return
		}
		if err := f.Close(); err != nil {
			d.tempErr = fmt.Errorf("closing temp document file: %w", err)
			return
		}
		d.tempPath = f.Name()
	})
	return d.tempPath, d.tempErr
}

// Cleanup removes the temp file if one was materialized.
func (d *Document) Cleanup() {
	if d.tempPath != "" {
		os.Remove(d.tempPath)
	}
}

// PDF returns the underlying parsed page.
func (p Page) PDF() pdf.Page {
	return p.doc.reader.Page(p.Number)
}

// Document returns the owning document.
func (p Page) Document() *Document {
	return p.doc
}
