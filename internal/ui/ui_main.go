package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	fynetheme "fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-lifeweeks/internal/config"
	"github.com/tartampluch/go-lifeweeks/internal/engine"
	"github.com/tartampluch/go-lifeweeks/internal/theme"
)

// mainView holds the widgets refreshed on every recompute.
type mainView struct {
	dobEntry    *widget.Entry
	weeksSlider *widget.Slider
	weeksEntry  *NumericalEntry
	weeksLabel  *widget.Label
	zoomSlider  *widget.Slider
	zoomLabel   *widget.Label
	showCheck   *widget.Check
	themeSelect *widget.Select

	lived      *widget.Label
	remaining  *widget.Label
	complete   *widget.Label
	toBirthday *widget.Label
	progress   *widget.ProgressBar
	banner     *widget.Label
	hover      *widget.Label

	grid       *LifeGrid
	legend     *widget.Label
	customList *widget.List
	noCustom   *widget.Label
	custom     []engine.Milestone

	// syncing is set while widgets are updated from the state, so their
	// change callbacks do not write the same values back.
	syncing bool
}

// buildMainWindow creates the grid window. With a tray, closing it only hides it.
func (app *LifeWeeksApp) buildMainWindow() {
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinTitle))
	app.Window = w
	w.Resize(fyne.NewSize(config.MainWinWidth, config.MainWinHeight))
	w.SetCloseIntercept(func() {
		if app.Tray != nil {
			w.Hide()
			return
		}
		app.App.Quit()
	})
	app.rebuildMainContent()
}

// ShowMainWindow brings the grid window to front.
func (app *LifeWeeksApp) ShowMainWindow() {
	if app.Window == nil {
		return
	}
	app.Window.Show()
	app.Window.RequestFocus()
}

// rebuildMainContent recreates every widget, picking up the current language.
func (app *LifeWeeksApp) rebuildMainContent() {
	if app.Window == nil {
		return
	}
	v := &mainView{}
	app.view = v
	app.Window.SetTitle(app.GetMsg(config.TKeyWinTitle))

	v.dobEntry = widget.NewEntry()
	v.dobEntry.SetPlaceHolder(engine.FormatDate(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)))
	v.dobEntry.SetText(app.State().DateOfBirth)
	v.dobEntry.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		if _, err := engine.ParseDate(s); err != nil {
			return errors.New(app.GetMsg(config.TKeyErrDOB))
		}
		return nil
	}
	v.dobEntry.OnChanged = func(s string) {
		if v.syncing {
			return
		}
		_ = app.SetDateOfBirth(s)
	}

	v.weeksSlider = widget.NewSlider(config.MinWeeks, config.MaxWeeks)
	v.weeksSlider.Step = config.WeeksStep
	v.weeksSlider.OnChanged = func(f float64) {
		if v.syncing {
			return
		}
		app.SetWeeks(int(f))
	}
	v.weeksEntry = NewNumericalEntry()
	v.weeksEntry.OnSubmitted = func(string) {
		if n, ok := v.weeksEntry.Int(); ok {
			app.SetWeeks(n)
		}
	}
	v.weeksLabel = widget.NewLabel("")

	v.zoomSlider = widget.NewSlider(config.MinZoom, config.MaxZoom)
	v.zoomSlider.Step = config.ZoomStep
	v.zoomSlider.OnChanged = func(f float64) {
		if v.syncing {
			return
		}
		app.SetZoom(f)
	}
	v.zoomLabel = widget.NewLabel("")

	v.showCheck = widget.NewCheck(app.GetMsg(config.TKeyLblShowEvents), func(b bool) {
		if v.syncing {
			return
		}
		app.SetShowMilestones(b)
	})

	labels := theme.Labels()
	names := theme.Names()
	options := make([]string, len(names))
	for i, n := range names {
		options[i] = labels[n]
	}
	v.themeSelect = widget.NewSelect(options, func(label string) {
		if v.syncing {
			return
		}
		for _, n := range names {
			if labels[n] == label {
				app.SetTheme(n)
				return
			}
		}
	})

	v.lived = statLabel()
	v.remaining = statLabel()
	v.complete = statLabel()
	v.toBirthday = statLabel()
	v.progress = widget.NewProgressBar()
	v.banner = widget.NewLabel("")
	v.banner.Wrapping = fyne.TextWrapWord
	v.banner.Importance = widget.WarningImportance
	v.hover = widget.NewLabel(" ")

	v.grid = NewLifeGrid()
	v.grid.OnHover = func(index int) {
		if index < 0 {
			v.hover.SetText(" ")
			return
		}
		v.hover.SetText(app.describeWeek(index))
	}
	v.grid.OnTapped = app.showAddMilestoneDialog

	v.legend = widget.NewLabel("")
	v.noCustom = widget.NewLabel(app.GetMsg(config.TKeyLblNoCustom))
	v.noCustom.Wrapping = fyne.TextWrapWord
	v.customList = widget.NewList(
		func() int { return len(v.custom) },
		func() fyne.CanvasObject {
			btn := widget.NewButtonWithIcon("", fynetheme.DeleteIcon(), nil)
			return container.NewBorder(nil, nil, nil, btn, widget.NewLabel(config.TablePlaceholder))
		},
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if id >= len(v.custom) {
				return
			}
			m := v.custom[id]
			row := o.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(m.Name + " · " + app.describeMilestone(m))
			row.Objects[1].(*widget.Button).OnTapped = func() { app.RemoveMilestone(m.ID) }
		},
	)

	controls := container.NewVBox(
		widget.NewForm(widget.NewFormItem(app.GetMsg(config.TKeyLblDOB), v.dobEntry)),
		container.NewBorder(nil, nil, v.weeksLabel, v.weeksEntry, v.weeksSlider),
		container.NewBorder(nil, nil, v.zoomLabel, nil, v.zoomSlider),
		container.NewBorder(nil, nil, widget.NewLabel(app.GetMsg(config.TKeyLblTheme)), v.showCheck, v.themeSelect),
	)

	stats := container.NewGridWithColumns(config.LayoutColumns,
		widget.NewCard("", app.GetMsg(config.TKeyLblWeeksLived), v.lived),
		widget.NewCard("", app.GetMsg(config.TKeyLblWeeksRemaining), v.remaining),
		widget.NewCard("", app.GetMsg(config.TKeyLblComplete), v.complete),
		widget.NewCard("", app.GetMsg(config.TKeyLblDaysToBday), v.toBirthday),
	)

	tagline := widget.NewLabel(app.GetMsg(config.TKeyTagline))
	tagline.TextStyle = fyne.TextStyle{Italic: true}
	top := container.NewVBox(tagline, controls, stats, v.progress, v.banner)

	customScroll := container.NewVScroll(container.NewStack(v.noCustom, v.customList))
	customScroll.SetMinSize(fyne.NewSize(config.ColWidthName, config.CustomListHeight))

	actions := container.NewGridWithColumns(config.LayoutColumnsDouble,
		widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnShare), fynetheme.ContentCopyIcon(), app.CopyShareLink),
		widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnImport), fynetheme.UploadIcon(), app.showImportDialog),
		widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnExportPNG), fynetheme.FileImageIcon(), func() {
			app.exportFile(config.ExtPNG, app.WritePNG)
		}),
		widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnExportPDF), fynetheme.DocumentPrintIcon(), func() {
			app.exportFile(config.ExtPDF, app.WritePDF)
		}),
		widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnExportICS), fynetheme.DocumentSaveIcon(), func() {
			app.exportFile(config.ExtICS, app.WriteICS)
		}),
		widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnMilestones), fynetheme.ListIcon(), app.ShowMilestonesWindow),
		widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSettings), fynetheme.SettingsIcon(), app.ShowSettingsWindow),
		widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnReset), fynetheme.DeleteIcon(), app.confirmReset),
	)

	side := container.NewVBox(
		widget.NewCard(app.GetMsg(config.TKeyLblCustom), "", customScroll),
		widget.NewCard(app.GetMsg(config.TKeyLblLegend), "", v.legend),
		actions,
	)

	content := container.NewBorder(top, v.hover, nil, container.NewVScroll(side), container.NewScroll(v.grid))
	app.Window.SetContent(container.NewPadded(content))
}

func statLabel() *widget.Label {
	l := widget.NewLabel("-")
	l.TextStyle = fyne.TextStyle{Bold: true}
	l.Alignment = fyne.TextAlignCenter
	return l
}

// refreshView copies the state and metrics into the widgets.
func (app *LifeWeeksApp) refreshView() {
	v := app.view
	if v == nil {
		return
	}
	st := app.State()
	m := app.Metrics()

	v.syncing = true
	defer func() { v.syncing = false }()

	// The entry keeps what the user typed; it only follows the state when valid.
	if st.DateOfBirth != "" && v.dobEntry.Text != st.DateOfBirth {
		if birth, err := engine.ParseDate(v.dobEntry.Text); err != nil || engine.FormatDate(birth) != st.DateOfBirth {
			v.dobEntry.SetText(st.DateOfBirth)
		}
	}
	v.weeksSlider.SetValue(float64(st.Weeks))
	v.weeksEntry.SetInt(st.Weeks)
	years := float64(st.Weeks) / config.WeeksPerYear
	v.weeksLabel.SetText(app.GetMsgf(config.TKeyLblExpectancy,
		map[string]any{"Years": fmt.Sprintf("%.1f", years)}, config.FallbackExpectancy, years))
	v.zoomSlider.SetValue(st.Zoom)
	v.zoomLabel.SetText(app.GetMsgf(config.TKeyLblZoom,
		map[string]any{"Zoom": fmt.Sprintf("%.2f", st.Zoom)}, config.FallbackZoom, st.Zoom))
	v.showCheck.SetChecked(st.ShowMilestones)
	v.themeSelect.SetSelected(theme.Get(st.Theme).Label)

	known := m.CurrentWeekIndex >= 0 && !m.IsFutureDob
	if known {
		v.lived.SetText(strconv.Itoa(m.WeeksLived))
		v.remaining.SetText(strconv.Itoa(m.WeeksRemaining))
		v.complete.SetText(fmt.Sprintf(config.FallbackPercent, m.PercentageComplete))
		v.toBirthday.SetText(strconv.Itoa(m.DaysToNextBirthday))
	} else {
		for _, l := range []*widget.Label{v.lived, v.remaining, v.complete, v.toBirthday} {
			l.SetText("-")
		}
	}
	v.progress.SetValue(m.PercentageComplete / 100)

	switch {
	case m.IsFutureDob:
		v.banner.SetText(app.GetMsg(config.TKeyBannerFuture))
		v.banner.Show()
	case !known:
		v.banner.SetText(app.GetMsg(config.TKeyPromptDOB))
		v.banner.Show()
	case m.IsBeyondExpectancy:
		v.banner.SetText(app.GetMsg(config.TKeyBannerBeyond))
		v.banner.Show()
	default:
		v.banner.Hide()
	}

	sheet := app.sheet()
	v.grid.SetSheet(sheet, st.Zoom)

	var lines []string
	for _, r := range sheet.Legend() {
		lines = append(lines, fmt.Sprintf(config.TextLegendItem, config.GlyphMilestone, r.Name, r.Index+1,
			app.formatDate(engine.MilestoneDate(sheet.Birth, r))))
	}
	v.legend.SetText(strings.Join(lines, "\n"))

	v.custom = st.Milestones
	if len(v.custom) == 0 {
		v.noCustom.Show()
		v.customList.Hide()
	} else {
		v.noCustom.Hide()
		v.customList.Show()
	}
	v.customList.Refresh()
}

// describeWeek is the hover text of a cell: week number, age, dates and milestone.
func (app *LifeWeeksApp) describeWeek(index int) string {
	years, weeks := engine.AgeAtWeek(index)
	parts := []string{
		app.GetMsgf(config.TKeyLblWeek, map[string]any{"Week": index + 1}, config.FallbackWeekLabel, index+1),
		app.GetMsgf(config.TKeyLblAge, map[string]any{"Years": years, "Weeks": weeks}, config.FallbackAgeLabel, years, weeks),
	}

	sheet := app.sheet()
	if !sheet.Birth.IsZero() {
		start, end := engine.WeekRange(sheet.Birth, index)
		parts = append(parts, fmt.Sprintf(config.FallbackRangeFormat, app.formatDate(start), app.formatDate(end)))
	}
	if sheet.ShowMilestones {
		if ms, ok := sheet.Metrics.Milestones[index]; ok {
			parts = append(parts, config.GlyphMilestone+" "+ms.Name)
		}
	}
	return strings.Join(parts, " · ")
}

// describeMilestone renders the trigger of a custom milestone.
func (app *LifeWeeksApp) describeMilestone(m engine.Milestone) string {
	switch m.Kind {
	case engine.KindDate:
		if d, err := engine.ParseDate(m.Date); err == nil {
			return app.formatDate(d)
		}
		return m.Date
	case engine.KindWeek:
		if m.Value != nil {
			return app.GetMsgf(config.TKeyLblWeek, map[string]any{"Week": *m.Value}, config.FallbackWeekLabel, *m.Value)
		}
	case engine.KindAge:
		if m.Value != nil {
			return app.GetMsgf(config.TKeyLblAgeValue, map[string]any{"Age": *m.Value}, "%d", *m.Value)
		}
	}
	return string(m.Kind)
}

// showAddMilestoneDialog asks for a name and a date, prefilled with the first
// day of the tapped week. Nothing happens while the birth date is unknown.
func (app *LifeWeeksApp) showAddMilestoneDialog(index int) {
	sheet := app.sheet()
	if sheet.Birth.IsZero() || app.Window == nil {
		return
	}

	nameEntry := widget.NewEntry()
	nameEntry.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(app.GetMsg(config.TKeyErrNameReq))
		}
		return nil
	}
	dateEntry := widget.NewEntry()
	dateEntry.SetText(engine.FormatDate(engine.WeekStart(sheet.Birth, index)))
	dateEntry.Validator = func(s string) error {
		if _, err := engine.ParseDate(s); err != nil {
			return errors.New(app.GetMsg(config.TKeyErrDOB))
		}
		return nil
	}

	items := []*widget.FormItem{
		widget.NewFormItem(app.GetMsg(config.TKeyLblEventName), nameEntry),
		widget.NewFormItem(app.GetMsg(config.TKeyLblEventDate), dateEntry),
	}
	title := app.GetMsgf(config.TKeyLblWeek, map[string]any{"Week": index + 1}, config.FallbackWeekLabel, index+1)

	d := dialog.NewForm(title, app.GetMsg(config.TKeyBtnAdd), app.GetMsg(config.TKeyBtnCancel), items, func(ok bool) {
		if !ok {
			return
		}
		date, err := engine.ParseDate(dateEntry.Text)
		if err != nil {
			return
		}
		if _, err := app.AddMilestone(nameEntry.Text, date); err != nil {
			dialog.ShowError(err, app.Window)
		}
	}, app.Window)
	d.Show()
	app.Window.Canvas().Focus(nameEntry)
}

// showImportDialog asks for a vCard path or URL and imports it in the background.
func (app *LifeWeeksApp) showImportDialog() {
	sourceEntry := widget.NewEntry()
	sourceEntry.SetPlaceHolder(config.SchemeHTTPS + "://")

	browse := widget.NewButton(app.GetMsg(config.TKeyBtnBrowse), func() {
		d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err == nil && r != nil {
				sourceEntry.SetText(r.URI().Path())
				_ = r.Close()
			}
		}, app.Window)
		d.SetFilter(storage.NewExtensionFileFilter([]string{config.ExtVCF}))
		d.Show()
	})

	item := widget.NewFormItem(app.GetMsg(config.TKeyLblSource), container.NewBorder(nil, nil, nil, browse, sourceEntry))
	item.HintText = app.GetMsg(config.TKeyHelpSource)

	dialog.ShowForm(app.GetMsg(config.TKeyBtnImport), app.GetMsg(config.TKeyBtnOpen), app.GetMsg(config.TKeyBtnCancel),
		[]*widget.FormItem{item}, func(ok bool) {
			if !ok {
				return
			}
			source := sourceEntry.Text
			go func() {
				rec, err := app.Importer.Import(app.Ctx, source)
				fyne.Do(func() {
					if err == nil {
						err = app.applyImport(rec)
					}
					if err != nil {
						slog.Warn(config.ErrVCardParse,
							config.LogKeyComponent, config.CompUI,
							config.LogKeyError, err,
						)
						app.notify(app.GetMsg(config.TKeyNotifImportFail))
					}
				})
			}()
		}, app.Window)
}

func (app *LifeWeeksApp) confirmReset() {
	dialog.ShowConfirm(app.GetMsg(config.TKeyBtnReset), app.GetMsg(config.TKeyConfirmReset), func(ok bool) {
		if ok {
			app.Reset()
		}
	}, app.Window)
}
