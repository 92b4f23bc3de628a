package models

// ExtractionMethod identifies which strategy produced a page's text.
type ExtractionMethod string

const (
	MethodText   ExtractionMethod = "text"   // embedded text layer
	MethodLayout ExtractionMethod = "layout" // layout-aware re-extraction
	MethodOCR    ExtractionMethod = "ocr"    // rasterize + optical recognition
	MethodNone   ExtractionMethod = "none"   // no strategy succeeded
)

// PageState reports whether a page yielded usable text.
type PageState string

const (
	PageOK         PageState = "ok"
	PageUnreadable PageState = "unreadable"
)

// PageStatus is the per-page entry of a run's status report.
type PageStatus struct {
	Page   int              `json:"page"`
	Method ExtractionMethod `json:"extraction_method_used"`
	Status PageState        `json:"status"`
}
