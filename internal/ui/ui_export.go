package ui

import (
	"fmt"
	"image/png"
	"io"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"github.com/tartampluch/go-lifeweeks/internal/config"
	"github.com/tartampluch/go-lifeweeks/internal/engine"
	"github.com/tartampluch/go-lifeweeks/internal/render"
)

// pngScale is the export resolution relative to the on-screen grid at zoom 1.
const pngScale = 2

// WritePNG encodes the grid as a PNG image, independent of the window zoom.
func (app *LifeWeeksApp) WritePNG(w io.Writer) error {
	sheet := app.sheet()
	pitch := (config.CellSize + config.CellGap) * pngScale

	g := NewLifeGrid()
	g.SetSheet(sheet, config.DefaultZoom)
	img := g.draw(pitch*config.WeeksPerRow, pitch*sheet.Rows())

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("%s: %w", config.ErrPNGEncode, err)
	}
	return nil
}

// WritePDF writes the printable grid.
func (app *LifeWeeksApp) WritePDF(w io.Writer) error {
	return render.PDF(w, app.sheet(), app.Clock.Now())
}

// WriteICS writes the milestone calendar.
func (app *LifeWeeksApp) WriteICS(w io.Writer) error {
	sheet := app.sheet()
	data, err := engine.BuildCalendar(sheet.Birth, sheet.Metrics, app.Clock.Now())
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// exportFile asks for a destination and writes one export format there.
func (app *LifeWeeksApp) exportFile(ext string, write func(io.Writer) error) {
	d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, app.Window)
			return
		}
		if uc == nil {
			return
		}

		werr := write(uc)
		if cerr := uc.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			slog.Error(config.ErrExportWrite,
				config.LogKeyComponent, config.CompUI,
				config.LogKeyFile, uc.URI().Path(),
				config.LogKeyError, werr,
			)
			app.App.SendNotification(fyne.NewNotification(config.TitleExportError, app.GetMsg(config.TKeyNotifExportFail)))
			return
		}

		slog.Info(config.MsgExportDone,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyFile, uc.URI().Path(),
		)
		app.notify(app.GetMsg(config.TKeyNotifExported))
	}, app.Window)

	d.SetFileName(config.ExportFilePrefix + engine.FormatDate(app.Clock.Now()) + ext)
	d.SetFilter(storage.NewExtensionFileFilter([]string{ext}))
	d.Show()
}
