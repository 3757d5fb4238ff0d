package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client used for remote vCard imports.
var UserAgent = "Go-LifeWeeks/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Life Weeks"
	AppID             = "com.github.tartampluch.go-lifeweeks"
	KeyringService    = "com.github.tartampluch.go-lifeweeks"
	KeyringUserDOB    = "date_of_birth"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	ExportFilePrefix  = "life-in-weeks-"
	DefaultLanguage   = "en"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs and exports, which contain the date of birth.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagDOB          = "dob"
	FlagWeeks        = "weeks"
	FlagPrint        = "print"
	FlagPDF          = "pdf"
	FlagICS          = "ics"
	FlagVCard        = "vcard"
	FlagShare        = "share"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescDOB      = "Date of birth (YYYY-MM-DD), overrides the saved value"
	FlagDescWeeks    = "Life expectancy in weeks, overrides the saved value"
	FlagDescPrint    = "Print the grid to the terminal and exit"
	FlagDescPDF      = "Write the grid as a PDF to this path and exit"
	FlagDescICS      = "Write the milestone calendar to this path and exit"
	FlagDescVCard    = "Import the date of birth from a vCard file or URL"
	FlagDescShare    = "Open a share link (or its dob=...&weeks=... query) without saving it"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Life Grid Limits & Defaults
// -----------------------------------------------------------------------------

const (
	// MinWeeks and MaxWeeks bound the horizon accepted from user input.
	MinWeeks = 3000
	MaxWeeks = 5200 // ~100 years

	// DefaultWeeks is roughly 80 years (52 * 80).
	DefaultWeeks = 4160

	// WeeksStep is the slider step: one year.
	WeeksStep = 52

	// WeeksPerRow is the grid width, one row per year of age.
	WeeksPerRow = 52

	// WeeksPerYear is the average year length used to display the horizon in years.
	WeeksPerYear = 52.1775

	DaysPerWeek = 7
	Day         = 24 * time.Hour
	Week        = DaysPerWeek * Day

	MinZoom     = 0.5
	MaxZoom     = 1.5
	ZoomStep    = 0.05
	DefaultZoom = 1.0

	DefaultTheme = "classic"

	// MaxMilestoneAge bounds age milestones so that year arithmetic cannot overflow.
	MaxMilestoneAge = 10000

	// NextBirthdayName labels the synthesized milestone placed on the next birthday.
	NextBirthdayName = "Next B-day"
)

// -----------------------------------------------------------------------------
// Preference Keys
// -----------------------------------------------------------------------------

const (
	PrefDOB            = "life-grid-dob"
	PrefMilestones     = "life-grid-custom-milestones"
	PrefTheme          = "life-grid-theme"
	PrefWeeks          = "life-grid-weeks"
	PrefZoom           = "life-grid-zoom"
	PrefShowMilestones = "life-grid-show-milestones"
	PrefLanguage       = "language"
	PrefServerPort     = "server_port"
	PrefLastRun        = "last_run_version"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Query Parameters (share links)
// -----------------------------------------------------------------------------

const (
	QueryDOB   = "dob"
	QueryWeeks = "weeks"
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	MainWinWidth        = 1100
	MainWinHeight       = 820
	SettingsWindowWidth = 480

	// CellSize is the edge of a week square at zoom 1, in device independent pixels.
	CellSize = 12
	CellGap  = 2

	// Milestones window
	MilestonesWinWidth  = 560
	MilestonesWinHeight = 420
	ColIDWeek           = 0
	ColIDName           = 1
	ColIDDate           = 2
	ColWidthWeek        = 90
	ColWidthName        = 280
	ColWidthDate        = 140
	TablePlaceholder    = "Cell Content"
	SortIconAsc         = " ▲"
	SortIconDesc        = " ▼"

	CustomListHeight    = 160
	LayoutColumns       = 4
	LayoutColumnsDouble = 2

	// MilestoneDotShare is the milestone marker edge relative to a cell.
	MilestoneDotShare = 0.5

	// ShareURLFormat expects host, port, route and encoded query.
	ShareURLFormat = "http://%s:%s%s?%s"
)

// -----------------------------------------------------------------------------
// Rendering (terminal & PDF)
// -----------------------------------------------------------------------------

const (
	GlyphPast      = "■"
	GlyphPresent   = "◆"
	GlyphFuture    = "□"
	GlyphMilestone = "●"

	TextRowLabel   = "%3d "
	TextSummary    = "Weeks lived: %d · Remaining: %d · Complete: %.1f%% · Next birthday in %d days"
	TextNoDOB      = "No date of birth set."
	TextFutureDOB  = "Date of birth is in the future."
	TextBeyond     = "Beyond the chosen life expectancy."
	TextLegendItem = "%s %s (week %d, %s)"

	PDFOrientation = "P"
	PDFUnit        = "mm"
	PDFSize        = "A4"
	PDFFont        = "Helvetica"
	PDFMargin      = 12.0
	PDFTitleSize   = 16.0
	PDFBodySize    = 9.0
	PDFLineHeight  = 5.0
	PDFGridShare   = 0.7 // share of the page height given to the grid
	PDFCellFill    = 0.8 // cell edge relative to its pitch
	PDFLegendTitle = "Milestones"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle          = "win_title"
	TKeyWinSettings       = "win_settings"
	TKeyWinMilestones     = "win_milestones"
	TKeyTagline           = "tagline"
	TKeyLblDOB            = "lbl_dob"
	TKeyLblExpectancy     = "lbl_expectancy"     // Requires Years
	TKeyLblZoom           = "lbl_zoom"           // Requires Zoom
	TKeyLblShowEvents     = "lbl_show_events"
	TKeyLblTheme          = "lbl_theme"
	TKeyLblWeeksLived     = "lbl_weeks_lived"
	TKeyLblWeeksRemaining = "lbl_weeks_remaining"
	TKeyLblComplete       = "lbl_life_complete"
	TKeyLblDaysToBday     = "lbl_days_to_bday"
	TKeyLblCustom         = "lbl_custom_milestones"
	TKeyLblEventName      = "lbl_event_name"
	TKeyLblEventDate      = "lbl_event_date"
	TKeyLblNoCustom       = "lbl_no_custom"
	TKeyLblLegend         = "lbl_legend"
	TKeyLblLanguage       = "lbl_language"
	TKeyLblPort           = "lbl_server_port"
	TKeyHelpPort          = "help_port"
	TKeyLblWeek           = "lbl_week" // Requires Week
	TKeyLblAge            = "lbl_age"  // Requires Years, Weeks
	TKeyPromptDOB         = "prompt_dob"
	TKeyBannerFuture      = "banner_future_dob"
	TKeyBannerBeyond      = "banner_beyond"
	TKeyBtnAdd            = "btn_add"
	TKeyBtnRemove         = "btn_remove"
	TKeyBtnReset          = "btn_reset"
	TKeyBtnShare          = "btn_share"
	TKeyBtnExportPNG      = "btn_export_png"
	TKeyBtnExportPDF      = "btn_export_pdf"
	TKeyBtnExportICS      = "btn_export_ics"
	TKeyBtnImport         = "btn_import_vcard"
	TKeyBtnMilestones     = "btn_milestones"
	TKeyBtnSettings       = "btn_settings"
	TKeyBtnSave           = "btn_save"
	TKeyBtnCancel         = "btn_cancel"
	TKeyBtnOpen           = "btn_open"
	TKeyNotifAdded        = "notif_added" // Requires Name
	TKeyNotifCopied       = "notif_link_copied"
	TKeyNotifReset        = "notif_reset"
	TKeyNotifExported     = "notif_exported"
	TKeyNotifExportFail   = "notif_export_failed"
	TKeyNotifImported     = "notif_imported"
	TKeyTrayStatus        = "tray_status" // Requires Weeks, Days
	TKeyTrayStatusNoDOB   = "tray_status_no_dob"
	TKeyColWeek           = "col_week"
	TKeyColName           = "col_name"
	TKeyColDate           = "col_date"
	TKeyFormatDate        = "format_date_short"
	TKeyErrDOB            = "err_dob"
	TKeyErrPortReq        = "err_port_required"
	TKeyErrPortNum        = "err_port_number"
	TKeyErrPortRange      = "err_port_range"
	TKeyErrNameReq        = "err_name_required"
	TKeyNotifImportFail   = "notif_import_failed"
	TKeyLblSource         = "lbl_import_source"
	TKeyHelpSource        = "help_import_source"
	TKeyBtnBrowse         = "btn_browse"
	TKeyLblAgeValue       = "lbl_age_value" // Requires Age
	TKeyLblGeneral        = "lbl_general"
	TKeyLblFooter         = "lbl_footer" // Requires Version
	TKeyConfirmReset      = "confirm_reset"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Life Weeks//Engine//EN"
	ICalCalName = "Life in Weeks"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "golifeweeks"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDescription = "DESCRIPTION"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"

	DefaultICalRefresh = 24 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatDisplay   = "Jan 2, 2006"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDSalt         = "go-lifeweeks-v1-"
	UIDHashLength   = 16
	FormatHashInput = "%s|%d|%s"
	FormatUID       = "%s-%d@%s"

	// File Extensions
	ExtPNG = ".png"
	ExtPDF = ".pdf"
	ExtICS = ".ics"
	ExtVCF = ".vcf"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	DefaultPort         = "18081"
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 16 * 1024 * 1024 // 16MB, a vCard address book
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteCalendar       = "/calendar.ics"
	RouteMetrics        = "/metrics"
	RouteHealth         = "/healthz"
	AddrSeparator       = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeTextPlain       = "text/plain; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrMilestoneValue   = "milestone has no numeric value"
	ErrMilestoneKind    = "unsupported milestone kind"
	ErrMilestoneDate    = "milestone date is not a valid calendar date"
	ErrMilestoneRange   = "milestone age is out of range"
	ErrDateParse        = "unable to parse date"
	ErrNoBirthday       = "no vCard with a birth date and year found"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrSourceEmpty      = "import source is empty"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrMilestonesDecode = "persisted milestones are corrupted, discarding"
	ErrMilestoneDecode  = "persisted milestone is malformed, keeping it as is"
	ErrMilestonesEncode = "failed to encode milestones"
	ErrKeyringRead      = "keyring read failed, using preferences"
	ErrKeyringWrite     = "keyring write failed, using preferences"
	ErrPDFRender        = "failed to render PDF"
	ErrPNGEncode        = "failed to encode PNG"
	ErrExportWrite      = "failed to write export file"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrFlagDOB          = "invalid -dob value"
	ErrFlagWeeks        = "invalid -weeks value"
	ErrOutputFile       = "failed to create output file"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrTrayNotSupported = "system tray not supported on this platform/driver"
	ErrLocNotInit       = "localizer not initialized"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgHealthy      = "ok"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	// StubVCalendar is the minimal valid iCalendar object used when no milestone is placed.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	FallbackTrayLabel   = "Go Life Weeks"
	FallbackTrayStatus  = "%d weeks lived · %d days to birthday"
	FallbackAdded       = "Added \"%s\""
	FallbackWeekLabel   = "Week %d"
	FallbackAgeLabel    = "%dy %dw"
	FallbackExpectancy  = "Life Expectancy (%.1f yrs)"
	FallbackZoom        = "Zoom (%.2fx)"
	FallbackPercent     = "%.1f%%"
	FallbackRangeFormat = "%s – %s"

	TitleStartupError = "Startup Error"
	TitleExportError  = "Export Error"

	MsgPortBusy        = "Port %s is busy or unavailable."
	MsgMilestoneSkip   = "Skipping milestone"
	MsgMetricsComputed = "Metrics computed"
	MsgFutureDOB       = "Date of birth is in the future"
	MsgAppStop         = "Application stopped gracefully"
	MsgCtxCancel       = "Context cancelled, shutting down UI"
	MsgAppStarting     = "Starting application"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgCacheUpdated    = "Calendar cache updated"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
	MsgStateLoaded     = "Persisted state loaded"
	MsgStateReset      = "Persisted state reset"
	MsgMilestoneAdded  = "Custom milestone added"
	MsgMilestoneGone   = "Custom milestone removed"
	MsgMilestoneIDGen  = "Assigned identifier to persisted milestone"
	MsgImportStart     = "Importing date of birth"
	MsgImportDone      = "Date of birth imported"
	MsgExportDone      = "Export written"
	MsgRecompute       = "Recomputing metrics"
	MsgInvalidDOB      = "Ignoring invalid date of birth"
	MsgInvalidWeeks    = "Ignoring invalid weeks value"
	MsgRequestServed   = "HTTP request served"
	MsgWindowOpen      = "Opening window"
	MsgWindowFocus     = "Window already open, requesting focus"
	MsgMilestonesSort  = "Milestones sorted"
	MsgSettingsSaved   = "Preferences saved"
	MsgThemeApplied    = "Theme applied"
	MsgShareCopied     = "Share link copied"
	MsgOutputWritten   = "Output written"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent  = "component"
	LogKeyError      = "error"
	LogKeyURL        = "url"
	LogKeyStatus     = "status_code"
	LogKeyFile       = "file"
	LogKeyLang       = "lang"
	LogKeyKey        = "key"
	LogKeyPort       = "port"
	LogKeyValue      = "value"
	LogKeyName       = "name"
	LogKeyKind       = "kind"
	LogKeyID         = "id"
	LogKeyIndex      = "index"
	LogKeyDOB        = "date_of_birth"
	LogKeyWeeks      = "weeks"
	LogKeyHorizon    = "horizon"
	LogKeyLived      = "weeks_lived"
	LogKeyMilestones = "milestones"
	LogKeySkipped    = "skipped"
	LogKeyCount      = "count"
	LogKeySizeBytes  = "size_bytes"
	LogKeyETag       = "etag"
	LogKeySource     = "source"
	LogKeySortCol    = "sort_column"
	LogKeySortAsc    = "sort_asc"
	LogKeyDuration   = "duration_ms"
	LogKeyMethod     = "method"
	LogKeyRequestID  = "request_id"
	LogKeyWindow     = "window"
	LogKeyTheme      = "theme"
	LogKeyZoom       = "zoom"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI      = "ui"
	CompUISet   = "ui_settings"
	CompEngine  = "engine"
	CompStore   = "store"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompRender  = "render"
	CompMain    = "main"
	CompI18n    = "i18n"
)
