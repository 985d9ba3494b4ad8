// Package pdf composes chart artifacts and summary text into a
// paginated A4 document. The layout is fixed: one summary page followed
// by one page per chart, so page count is deterministic for the same
// input.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-pdf/fpdf"

	"covid-dashboard/internal/domain/entity"
)

// ErrRender indicates that an artifact could not be embedded into the
// document. It is reported to whoever invoked report generation and is
// never fatal to a running server.
var ErrRender = errors.New("report render failed")

// A4 page geometry in millimeters.
const (
	pageMargin = 15.0
	bodyWidth  = 210.0 - 2*pageMargin
)

// Writer writes report documents to disk.
type Writer struct{}

// Write lays out the charts and summary text onto fixed-size pages in
// the order given and writes the document to path, overwriting any
// existing file. The file handle is closed on all exit paths.
func (w *Writer) Write(path, title, summary string, charts []entity.ChartArtifact) (*entity.ReportArtifact, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, true)
	doc.SetMargins(pageMargin, pageMargin, pageMargin)

	writeSummaryPage(doc, title, summary)

	for _, art := range charts {
		if err := writeChartPage(doc, art); err != nil {
			return nil, err
		}
	}

	pages := doc.PageCount()
	if err := doc.OutputFileAndClose(path); err != nil {
		return nil, fmt.Errorf("write report to %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat report: %w", err)
	}
	return &entity.ReportArtifact{
		Path:      path,
		Pages:     pages,
		Size:      info.Size(),
		CreatedAt: time.Now(),
	}, nil
}

func writeSummaryPage(doc *fpdf.Fpdf, title, summary string) {
	doc.AddPage()
	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(0, 12, title, "", 1, "L", false, 0, "")
	doc.Ln(4)
	doc.SetFont("Helvetica", "", 11)
	doc.MultiCell(bodyWidth, 6, summary, "", "L", false)
}

func writeChartPage(doc *fpdf.Fpdf, art entity.ChartArtifact) error {
	if len(art.PNG) == 0 || art.Width <= 0 || art.Height <= 0 {
		return fmt.Errorf("embed chart %q: empty artifact: %w", art.Name, ErrRender)
	}

	doc.AddPage()
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader(art.Name, opts, bytes.NewReader(art.PNG))
	if doc.Err() {
		err := doc.Error()
		return fmt.Errorf("embed chart %q: %v: %w", art.Name, err, ErrRender)
	}

	// Scale to the body width, preserving aspect ratio.
	height := bodyWidth * float64(art.Height) / float64(art.Width)
	doc.ImageOptions(art.Name, pageMargin, pageMargin, bodyWidth, height, false, opts, 0, "")
	if doc.Err() {
		err := doc.Error()
		return fmt.Errorf("place chart %q: %v: %w", art.Name, err, ErrRender)
	}
	return nil
}

// PageCount re-reads the number of pages from a rendered document.
// It counts page objects in the PDF body, which is sufficient for
// verifying the deterministic layout produced by Write.
func PageCount(r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read document: %w", err)
	}
	pages := bytes.Count(data, []byte("/Type /Page")) - bytes.Count(data, []byte("/Type /Pages"))
	if pages < 0 {
		pages = 0
	}
	return pages, nil
}
