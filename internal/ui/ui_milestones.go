package ui

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-lifeweeks/internal/config"
	"github.com/tartampluch/go-lifeweeks/internal/engine"
)

// milestoneRow is one line of the milestones table.
type milestoneRow struct {
	Week int // 1-based
	Name string
	Date time.Time
}

// milestoneRows lists the placed milestones of a grid in week order.
func milestoneRows(birth time.Time, m engine.Metrics) []milestoneRow {
	resolved := m.Resolved()
	rows := make([]milestoneRow, len(resolved))
	for i, r := range resolved {
		rows[i] = milestoneRow{
			Week: r.Index + 1,
			Name: r.Name,
			Date: engine.MilestoneDate(birth, r),
		}
	}
	return rows
}

// sortMilestoneRows orders rows by a table column. Ties fall back to the week.
func sortMilestoneRows(rows []milestoneRow, col int, asc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		var less bool
		switch col {
		case config.ColIDName:
			an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
			if an == bn {
				less = a.Week < b.Week
			} else {
				less = an < bn
			}
		case config.ColIDDate:
			if a.Date.Equal(b.Date) {
				less = a.Week < b.Week
			} else {
				less = a.Date.Before(b.Date)
			}
		default: // config.ColIDWeek
			less = a.Week < b.Week
		}
		if !asc {
			return !less
		}
		return less
	})
}

// ShowMilestonesWindow lists every placed milestone in a sortable table.
// Only one instance is open at a time.
func (app *LifeWeeksApp) ShowMilestonesWindow() {
	if app.milestonesWindow != nil {
		slog.Debug(config.MsgWindowFocus,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyWindow, config.TKeyWinMilestones,
		)
		app.milestonesWindow.RequestFocus()
		return
	}

	w := app.App.NewWindow(app.GetMsg(config.TKeyWinMilestones))
	app.milestonesWindow = w
	w.Resize(fyne.NewSize(config.MilestonesWinWidth, config.MilestonesWinHeight))

	app.StateMut.RLock()
	rows := milestoneRows(app.birth, app.metrics)
	app.StateMut.RUnlock()

	slog.Info(config.MsgWindowOpen,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyWindow, config.TKeyWinMilestones,
		config.LogKeyCount, len(rows),
	)

	currentSortCol := config.ColIDWeek
	sortAsc := true

	var table *widget.Table
	refreshTable := func() {
		sortMilestoneRows(rows, currentSortCol, sortAsc)
		slog.Debug(config.MsgMilestonesSort,
			config.LogKeyComponent, config.CompUI,
			config.LogKeySortCol, currentSortCol,
			config.LogKeySortAsc, sortAsc,
		)
		table.Refresh()
	}

	table = widget.NewTable(
		func() (int, int) {
			return len(rows), 3
		},
		func() fyne.CanvasObject {
			return widget.NewLabel(config.TablePlaceholder)
		},
		func(id widget.TableCellID, o fyne.CanvasObject) {
			label := o.(*widget.Label)
			if id.Row >= len(rows) {
				return
			}
			r := rows[id.Row]
			switch id.Col {
			case config.ColIDWeek:
				label.SetText(strconv.Itoa(r.Week))
			case config.ColIDName:
				label.SetText(r.Name)
			case config.ColIDDate:
				label.SetText(app.formatDate(r.Date))
			}
		},
	)

	table.ShowHeaderRow = true
	table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewButton(config.TablePlaceholder, func() {})
	}
	table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		btn := o.(*widget.Button)

		var key string
		switch id.Col {
		case config.ColIDWeek:
			key = config.TKeyColWeek
		case config.ColIDName:
			key = config.TKeyColName
		case config.ColIDDate:
			key = config.TKeyColDate
		}
		text := app.GetMsg(key)
		if id.Col == currentSortCol {
			if sortAsc {
				text += config.SortIconAsc
			} else {
				text += config.SortIconDesc
			}
		}
		btn.SetText(text)

		btn.OnTapped = func() {
			if currentSortCol == id.Col {
				sortAsc = !sortAsc
			} else {
				currentSortCol = id.Col
				sortAsc = true
			}
			refreshTable()
		}
	}

	table.SetColumnWidth(config.ColIDWeek, config.ColWidthWeek)
	table.SetColumnWidth(config.ColIDName, config.ColWidthName)
	table.SetColumnWidth(config.ColIDDate, config.ColWidthDate)

	sortMilestoneRows(rows, currentSortCol, sortAsc)

	w.SetContent(container.NewBorder(nil, nil, nil, nil, table))
	w.SetOnClosed(func() {
		app.milestonesWindow = nil
	})
	w.Show()
}
