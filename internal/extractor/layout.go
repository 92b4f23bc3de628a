package extractor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"fmoura/extrato-csv/internal/document"
	"fmoura/extrato-csv/internal/models"
)

// LayoutStrategy re-extracts the text layer row by row, preserving line and
// column structure that the plain reading order loses on multi-column
// statements. Tried when the plain strategy's output fails the plausibility
// check.
type LayoutStrategy struct{}

// Method implements Strategy.
func (s *LayoutStrategy) Method() models.ExtractionMethod {
	return models.MethodLayout
}

// Available implements Strategy.
func (s *LayoutStrategy) Available() bool {
	return true
}

// Extract implements Strategy. Rows are ordered top to bottom and text runs
// within a row left to right, reconstructing the visual line layout.
func (s *LayoutStrategy) Extract(_ context.Context, page document.Page) (Result, error) {
	blocks, err := rowBlocks(page)
	if err != nil {
		return Result{}, err
	}

	var lines []string
	var current []string
	var currentY float64
	for i, b := range blocks {
		if i > 0 && b.Y != currentY {
			lines = append(lines, strings.Join(current, " "))
			current = current[:0]
		}
		currentY = b.Y
		if t := strings.TrimSpace(b.Text); t != "" {
			current = append(current, t)
		}
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}

	return Result{
		Text:   strings.TrimSpace(strings.Join(lines, "\n")),
		Blocks: blocks,
		Method: models.MethodLayout,
	}, nil
}

func rowBlocks(page document.Page) (blocks []TextBlock, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("layout extraction panic: %v", r)
		}
	}()

	p := page.PDF()
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d not present in document", page.Number)
	}

	rows, err := p.GetTextByRow()
	if err != nil {
		return nil, err
	}

	// Rows top to bottom (PDF Y grows upward), runs left to right.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Position > rows[j].Position
	})
	for _, row := range rows {
		texts := row.Content
		sort.SliceStable(texts, func(i, j int) bool {
			return texts[i].X < texts[j].X
		})
		for _, t := range texts {
			blocks = append(blocks, TextBlock{
				X:    t.X,
				Y:    float64(row.Position),
				Text: t.S,
			})
		}
	}
	return blocks, nil
}
