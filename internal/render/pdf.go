package render

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/tartampluch/go-lifeweeks/internal/config"
	"github.com/tartampluch/go-lifeweeks/internal/engine"
)

// PDF writes the grid to w as an A4 page with the counters on top and the
// milestone legend below. The legend flows onto extra pages when needed.
func PDF(w io.Writer, s Sheet, created time.Time) error {
	pdf := fpdf.New(config.PDFOrientation, config.PDFUnit, config.PDFSize, "")
	pdf.SetMargins(config.PDFMargin, config.PDFMargin, config.PDFMargin)
	pdf.SetAutoPageBreak(true, config.PDFMargin)
	pdf.SetCreationDate(created)
	pdf.SetTitle(s.Title, true)
	pdf.SetCreator(config.AppName, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()
	usableW := pageW - 2*config.PDFMargin

	p := s.Palette
	setText := func(style string, size float64) {
		pdf.SetFont(config.PDFFont, style, size)
		pdf.SetTextColor(int(p.Text.R), int(p.Text.G), int(p.Text.B))
	}

	setText("B", config.PDFTitleSize)
	pdf.CellFormat(usableW, config.PDFLineHeight*2, tr(s.Title), "", 1, "L", false, 0, "")
	setText("", config.PDFBodySize)
	pdf.CellFormat(usableW, config.PDFLineHeight, tr(summary(s)), "", 1, "L", false, 0, "")
	pdf.Ln(config.PDFLineHeight)

	rows := s.Rows()
	if rows > 0 {
		top := pdf.GetY()
		labelW := pdf.GetStringWidth("000 ")
		gridH := pageH*config.PDFGridShare - top
		pitch := min((usableW-labelW)/config.WeeksPerRow, gridH/float64(rows))
		edge := pitch * config.PDFCellFill

		pdf.SetFont(config.PDFFont, "", min(config.PDFBodySize, pitch*2))
		pdf.SetTextColor(int(p.Muted.R), int(p.Muted.G), int(p.Muted.B))

		for row := 0; row < rows; row++ {
			y := top + float64(row)*pitch
			if row%5 == 0 {
				pdf.Text(config.PDFMargin, y+edge, fmt.Sprintf("%d", row))
			}
			for col := 0; col < config.WeeksPerRow; col++ {
				index := row*config.WeeksPerRow + col
				if index >= s.Horizon {
					break
				}
				c := s.Cell(index)
				x := config.PDFMargin + labelW + float64(col)*pitch

				pdf.SetFillColor(int(c.Fill.R), int(c.Fill.G), int(c.Fill.B))
				pdf.Rect(x, y, edge, edge, "F")
				if c.Dot {
					pdf.SetFillColor(int(p.Milestone.R), int(p.Milestone.G), int(p.Milestone.B))
					pdf.Circle(x+edge/2, y+edge/2, edge/4, "F")
				}
			}
		}
		pdf.SetXY(config.PDFMargin, top+float64(rows)*pitch+config.PDFLineHeight)
	}

	if legend := s.Legend(); len(legend) > 0 {
		setText("B", config.PDFBodySize+1)
		pdf.CellFormat(usableW, config.PDFLineHeight, tr(config.PDFLegendTitle), "", 1, "L", false, 0, "")
		setText("", config.PDFBodySize)
		for _, rm := range legend {
			line := fmt.Sprintf(config.TextLegendItem, "-", rm.Name, rm.Index+1,
				engine.FormatDate(engine.MilestoneDate(s.Birth, rm)))
			pdf.CellFormat(usableW, config.PDFLineHeight, tr(line), "", 1, "L", false, 0, "")
		}
	}

	if err := pdf.Output(w); err != nil {
		slog.Error(config.ErrPDFRender,
			config.LogKeyComponent, config.CompRender,
			config.LogKeyError, err,
		)
		return fmt.Errorf("%s: %w", config.ErrPDFRender, err)
	}
	return nil
}
