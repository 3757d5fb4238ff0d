package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	fynetheme "fyne.io/fyne/v2/theme"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-lifeweeks/internal/config"
	"github.com/tartampluch/go-lifeweeks/internal/engine"
	"github.com/tartampluch/go-lifeweeks/internal/render"
	"github.com/tartampluch/go-lifeweeks/internal/server"
	"github.com/tartampluch/go-lifeweeks/internal/store"
	"github.com/tartampluch/go-lifeweeks/internal/theme"
)

// LifeWeeksApp owns the view state and wires the grid window, the tray and
// the local calendar server together.
type LifeWeeksApp struct {
	App         fyne.App
	Window      fyne.Window
	Preferences fyne.Preferences
	Store       *store.Store
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	Ctx         context.Context

	Server   *server.CalendarServer
	Importer *engine.Importer
	Clock    engine.Clock // Injected clock for testability

	Tray desktop.App
	Menu *fyne.Menu

	TrayStatusItem     *fyne.MenuItem
	TrayOpenItem       *fyne.MenuItem
	TrayMilestonesItem *fyne.MenuItem
	TraySettingsItem   *fyne.MenuItem

	SupportedLanguages []string

	// StateMut guards the grid state, which is replaced wholesale on every recompute.
	StateMut sync.RWMutex
	state    store.State
	birth    time.Time
	metrics  engine.Metrics

	view             *mainView
	settingsWindow   fyne.Window
	milestonesWindow fyne.Window
}

// NewLifeWeeksApp constructs the application and wires dependencies.
func NewLifeWeeksApp(a fyne.App, ctx context.Context, st *store.Store, srv *server.CalendarServer, importer *engine.Importer) *LifeWeeksApp {
	a.SetIcon(fynetheme.GridIcon())

	return &LifeWeeksApp{
		App:                a,
		Preferences:        a.Preferences(),
		Store:              st,
		Ctx:                ctx,
		Server:             srv,
		Importer:           importer,
		Clock:              engine.RealClock{},
		SupportedLanguages: config.SupportedLanguages,
	}
}

// Init loads the translations, builds the main window for the initial state
// and computes the first metrics. Run calls it; tests call it directly.
func (app *LifeWeeksApp) Init(initial store.State) {
	app.SetupI18n()

	app.StateMut.Lock()
	app.state = initial
	app.StateMut.Unlock()

	app.applyTheme()
	app.buildMainWindow()
	app.recompute()
}

// Run launches the services and blocks in the UI loop.
func (app *LifeWeeksApp) Run(initial store.State) {
	if desk, ok := app.App.(desktop.App); ok {
		app.Tray = desk
	} else {
		slog.Warn(config.ErrTrayNotSupported, config.LogKeyComponent, config.CompUI)
	}

	app.Init(initial)

	if app.Tray != nil {
		app.Tray.SetSystemTrayIcon(app.App.Icon())
		app.setupTrayMenu()
		app.updateTrayStatus(app.Metrics())
	}

	go func() {
		if err := app.Server.Start(app.Ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyComponent, config.CompUI,
				config.LogKeyError, err,
			)
			fyne.Do(func() {
				app.App.SendNotification(fyne.NewNotification(
					config.TitleStartupError,
					fmt.Sprintf(config.MsgPortBusy, app.Server.Port)))
			})
		}
	}()

	app.Window.Show()
	app.App.Run()
}

// -----------------------------------------------------------------------------
// State
// -----------------------------------------------------------------------------

// State returns the current view state.
func (app *LifeWeeksApp) State() store.State {
	app.StateMut.RLock()
	defer app.StateMut.RUnlock()
	return app.state
}

// Metrics returns the metrics of the last recompute.
func (app *LifeWeeksApp) Metrics() engine.Metrics {
	app.StateMut.RLock()
	defer app.StateMut.RUnlock()
	return app.metrics
}

func (app *LifeWeeksApp) update(fn func(st *store.State)) {
	app.StateMut.Lock()
	fn(&app.state)
	app.StateMut.Unlock()
	app.recompute()
}

// recompute derives the metrics from the current state and pushes them to
// the window, the tray and the calendar feed.
func (app *LifeWeeksApp) recompute() {
	app.StateMut.Lock()
	st := app.state
	var birth time.Time
	if st.DateOfBirth != "" {
		if d, err := engine.ParseDate(st.DateOfBirth); err == nil {
			birth = d
		}
	}
	m := engine.NewCalculator(app.Clock).Compute(birth, st.Weeks, st.Milestones)
	app.birth, app.metrics = birth, m
	app.StateMut.Unlock()

	slog.Debug(config.MsgRecompute,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyWeeks, st.Weeks,
		config.LogKeyLived, m.WeeksLived,
	)

	app.publish(birth, m, st.Milestones)
	app.updateTrayStatus(m)
	app.refreshView()
}

func (app *LifeWeeksApp) publish(birth time.Time, m engine.Metrics, custom []engine.Milestone) {
	if app.Server == nil {
		return
	}
	data, err := engine.BuildCalendar(birth, m, app.Clock.Now())
	if err != nil {
		slog.Error(config.ErrICalEncode,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err,
		)
		return
	}
	app.Server.Update(data)
	app.Server.SetMilestones(custom)
}

// sheet is the current grid as the renderers see it.
func (app *LifeWeeksApp) sheet() render.Sheet {
	app.StateMut.RLock()
	defer app.StateMut.RUnlock()
	return render.Sheet{
		Title:          app.GetMsg(config.TKeyWinTitle),
		Birth:          app.birth,
		Horizon:        app.state.Weeks,
		Metrics:        app.metrics,
		Palette:        theme.Get(app.state.Theme),
		ShowMilestones: app.state.ShowMilestones,
	}
}

// SetDateOfBirth validates and saves a YYYY-MM-DD entry. An invalid or empty
// entry shows the empty grid; only valid dates are persisted.
func (app *LifeWeeksApp) SetDateOfBirth(text string) error {
	text = strings.TrimSpace(text)
	dob := ""
	var err error
	if text != "" {
		birth, perr := engine.ParseDate(text)
		if perr != nil {
			err = perr
		} else {
			dob = engine.FormatDate(birth)
			app.Store.SetDateOfBirth(dob)
		}
	}
	app.update(func(st *store.State) { st.DateOfBirth = dob })
	return err
}

// SetWeeks saves the horizon, clamped to the accepted range.
func (app *LifeWeeksApp) SetWeeks(weeks int) {
	weeks = app.Store.SetWeeks(weeks)
	app.update(func(st *store.State) { st.Weeks = weeks })
}

// SetZoom saves the grid zoom.
func (app *LifeWeeksApp) SetZoom(zoom float64) {
	zoom = store.ClampZoom(zoom)
	slog.Debug(config.MsgRecompute, config.LogKeyComponent, config.CompUI, config.LogKeyZoom, zoom)
	app.Store.SetZoom(zoom)
	app.update(func(st *store.State) { st.Zoom = zoom })
}

// SetShowMilestones toggles the milestone markers.
func (app *LifeWeeksApp) SetShowMilestones(show bool) {
	app.Store.SetShowMilestones(show)
	app.update(func(st *store.State) { st.ShowMilestones = show })
}

// SetTheme switches the palette. Unknown names are ignored.
func (app *LifeWeeksApp) SetTheme(name string) {
	if _, ok := theme.Lookup(name); !ok {
		return
	}
	app.Store.SetTheme(name)
	app.StateMut.Lock()
	app.state.Theme = name
	app.StateMut.Unlock()

	app.applyTheme()
	app.recompute()
}

func (app *LifeWeeksApp) applyTheme() {
	name := app.State().Theme
	app.App.Settings().SetTheme(newPaletteTheme(theme.Get(name)))
	slog.Debug(config.MsgThemeApplied,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyTheme, name,
	)
}

// AddMilestone stores a dated milestone under name.
func (app *LifeWeeksApp) AddMilestone(name string, date time.Time) (engine.Milestone, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return engine.Milestone{}, errors.New(app.GetMsg(config.TKeyErrNameReq))
	}
	m := engine.NewCustomMilestone(name, date)
	list := app.Store.AddMilestone(m)
	app.update(func(st *store.State) { st.Milestones = list })

	app.notify(app.GetMsgf(config.TKeyNotifAdded, map[string]any{"Name": name}, config.FallbackAdded, name))
	return m, nil
}

// RemoveMilestone deletes the custom milestone with the given identifier.
func (app *LifeWeeksApp) RemoveMilestone(id string) {
	list := app.Store.RemoveMilestone(id)
	app.update(func(st *store.State) { st.Milestones = list })
}

// Reset forgets every saved value and returns to the defaults.
func (app *LifeWeeksApp) Reset() {
	app.Store.Reset()
	if v := app.view; v != nil {
		v.syncing = true
		v.dobEntry.SetText("")
		v.syncing = false
	}
	app.StateMut.Lock()
	app.state = app.Store.Load()
	app.StateMut.Unlock()

	app.applyTheme()
	app.recompute()
	app.notify(app.GetMsg(config.TKeyNotifReset))
}

// ImportVCard reads the birth date from a vCard file or URL and applies it.
func (app *LifeWeeksApp) ImportVCard(ctx context.Context, source string) error {
	rec, err := app.Importer.Import(ctx, source)
	if err != nil {
		return err
	}
	return app.applyImport(rec)
}

func (app *LifeWeeksApp) applyImport(rec engine.BirthRecord) error {
	if err := app.SetDateOfBirth(engine.FormatDate(rec.DateOfBirth)); err != nil {
		return err
	}
	app.notify(app.GetMsg(config.TKeyNotifImported))
	return nil
}

// ShareLink returns the local metrics URL reproducing the current grid.
func (app *LifeWeeksApp) ShareLink() string {
	port := config.DefaultPort
	if app.Server != nil && app.Server.Port != "" {
		port = app.Server.Port
	}
	st := app.State()
	return fmt.Sprintf(config.ShareURLFormat,
		config.LocalhostBindAddr, port, config.RouteMetrics, store.ShareQuery(st.DateOfBirth, st.Weeks))
}

// CopyShareLink puts ShareLink on the clipboard.
func (app *LifeWeeksApp) CopyShareLink() {
	app.App.Clipboard().SetContent(app.ShareLink())
	slog.Info(config.MsgShareCopied, config.LogKeyComponent, config.CompUI)
	app.notify(app.GetMsg(config.TKeyNotifCopied))
}

func (app *LifeWeeksApp) notify(msg string) {
	app.App.SendNotification(fyne.NewNotification(config.AppName, msg))
}

// -----------------------------------------------------------------------------
// Tray
// -----------------------------------------------------------------------------

// setupTrayMenu constructs the system tray menu.
func (app *LifeWeeksApp) setupTrayMenu() {
	app.TrayStatusItem = fyne.NewMenuItem(config.FallbackTrayLabel, app.ShowMainWindow)
	app.TrayOpenItem = fyne.NewMenuItem(app.GetMsg(config.TKeyBtnOpen), app.ShowMainWindow)
	app.TrayMilestonesItem = fyne.NewMenuItem(app.GetMsg(config.TKeyBtnMilestones), app.ShowMilestonesWindow)
	app.TraySettingsItem = fyne.NewMenuItem(app.GetMsg(config.TKeyBtnSettings), app.ShowSettingsWindow)

	app.Menu = fyne.NewMenu(config.AppName,
		app.TrayStatusItem,
		fyne.NewMenuItemSeparator(),
		app.TrayOpenItem,
		app.TrayMilestonesItem,
		app.TraySettingsItem,
	)

	if app.Tray != nil {
		app.Tray.SetSystemTrayMenu(app.Menu)
	}
}

// RefreshTrayMenu updates localized labels in the tray menu.
func (app *LifeWeeksApp) RefreshTrayMenu() {
	if app.Menu == nil {
		return
	}
	app.TrayOpenItem.Label = app.GetMsg(config.TKeyBtnOpen)
	app.TrayMilestonesItem.Label = app.GetMsg(config.TKeyBtnMilestones)
	app.TraySettingsItem.Label = app.GetMsg(config.TKeyBtnSettings)
	app.updateTrayStatus(app.Metrics())
}

// updateTrayStatus shows the weeks lived and the birthday countdown.
func (app *LifeWeeksApp) updateTrayStatus(m engine.Metrics) {
	if app.Menu == nil || app.TrayStatusItem == nil {
		return
	}

	var label string
	switch {
	case m.IsFutureDob:
		label = app.GetMsg(config.TKeyBannerFuture)
	case m.CurrentWeekIndex < 0:
		label = app.GetMsg(config.TKeyTrayStatusNoDOB)
	default:
		label = app.GetMsgf(config.TKeyTrayStatus,
			map[string]any{"Weeks": m.WeeksLived, "Days": m.DaysToNextBirthday},
			config.FallbackTrayStatus, m.WeeksLived, m.DaysToNextBirthday)
	}

	app.TrayStatusItem.Label = label
	app.Menu.Refresh()
}
