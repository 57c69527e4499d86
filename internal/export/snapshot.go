package export

import (
	"bytes"
	"fmt"
	"image/png"
	"math"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/DipuTony/trulyhelp-portal/internal/common"
)

// A4 portrait page geometry in millimetres.
const (
	pageWidthMM  = 210.0
	pageHeightMM = 297.0
	marginMM     = 10.0

	usableWidthMM  = pageWidthMM - 2*marginMM
	usableHeightMM = pageHeightMM - 2*marginMM
)

// SnapshotPDF wraps a rendered screen capture into a paginated PDF. The PNG
// is scaled to the printable width and sliced vertically: a capture taller
// than one page continues on the next instead of being shrunk to fit.
func SnapshotPDF(pngData []byte, title string) ([]byte, string, string, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(pngData))
	if err != nil {
		return nil, "", "", &common.ExportError{Op: "snapshot", Err: fmt.Errorf("decode png: %w", err)}
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, "", "", &common.ExportError{Op: "snapshot", Err: fmt.Errorf("empty image %dx%d", cfg.Width, cfg.Height)}
	}

	scaledHeight := usableWidthMM * float64(cfg.Height) / float64(cfg.Width)
	pages := pageCount(scaledHeight, usableHeightMM)

	pdf := gofpdf.New("P", "mm", "A4", "")
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("snapshot", opts, bytes.NewReader(pngData))
	if pdf.Err() {
		return nil, "", "", &common.ExportError{Op: "snapshot", Err: pdf.Error()}
	}

	for page := 0; page < pages; page++ {
		pdf.AddPage()
		pdf.ClipRect(marginMM, marginMM, usableWidthMM, usableHeightMM, false)
		y := marginMM - float64(page)*usableHeightMM
		pdf.ImageOptions("snapshot", marginMM, y, usableWidthMM, scaledHeight, false, opts, 0, "")
		pdf.ClipEnd()
		if title != "" {
			pdf.SetFont("Arial", "I", 8)
			pdf.SetXY(marginMM, pageHeightMM-marginMM+2)
			pdf.CellFormat(usableWidthMM, 5,
				fmt.Sprintf("%s  -  page %d of %d", title, page+1, pages), "", 0, "C", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", "", &common.ExportError{Op: "snapshot", Err: err}
	}

	filename := fmt.Sprintf("report_snapshot_%s.pdf", time.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, "application/pdf", nil
}

// pageCount returns how many pages a content strip of the given height
// occupies. Anything that spills past a page boundary gets a further page.
func pageCount(contentHeight, pageHeight float64) int {
	if contentHeight <= 0 {
		return 1
	}
	return int(math.Ceil(contentHeight / pageHeight))
}
