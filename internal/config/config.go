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

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Reminder/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Reminder"
	AppID             = "com.github.tartampluch.go-reminder"
	AppCommand        = "go-reminder"
	KeyringService    = "com.github.tartampluch.go-reminder"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	JournalFileName   = "journal.log"
	SettingsFileName  = "settings.yaml"
	DatabaseFileName  = "reminder.db"
	EnvPrefix         = "GO_REMINDER"
	EnvSettingsPath   = "GO_REMINDER_SETTINGS"
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
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// Log Rotation (lumberjack)
// -----------------------------------------------------------------------------

const (
	LogMaxSizeMB  = 10
	LogMaxBackups = 5
	LogMaxAgeDays = 30
)

// -----------------------------------------------------------------------------
// CLI Commands, Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion    = "version"
	FlagDebug      = "debug"
	FlagSettings   = "settings"
	FlagLanguage   = "lang"
	FlagShowAll    = "all"
	FlagWebPass    = "password"
	FlagLeadDays   = "lead-days"
	FlagUrgentDays = "urgent-days"

	FlagDescVersion    = "Show application version and exit"
	FlagDescDebug      = "Enable debug logging to stdout"
	FlagDescSettings   = "Path to the settings file"
	FlagDescLanguage   = "Override the display language (ro, en)"
	FlagDescShowAll    = "Show completed and work-related entries"
	FlagDescWebPass    = "Store this CardDAV password in the OS keyring before importing"
	FlagDescLeadDays   = "Lead days assigned to imported anniversaries"
	FlagDescUrgentDays = "Urgent days assigned to imported anniversaries"

	CmdShortRoot   = "Reminder engine for events, anniversaries and holidays"
	CmdShortCheck  = "Evaluate all records once and print the active notifications"
	CmdShortServe  = "Run scheduled passes and serve the notification feed"
	CmdShortStatus = "Mark a record as done or keep"
	CmdShortInit   = "Create the record tables and write the default settings file"
	CmdShortImport = "Import anniversaries from a vCard source"

	CmdUseCheck  = "check"
	CmdUseServe  = "serve"
	CmdUseStatus = "status <category> <id> <done|keep>"
	CmdUseInit   = "init"
	CmdUseImport = "import"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
	MsgStatusSaved   = "Status of %s #%s set to %s\n"
	MsgInitDone      = "Tables ready in %s, settings written to %s\n"
	MsgImportDone    = "Imported %d anniversaries (%d already present)\n"
)

// -----------------------------------------------------------------------------
// Terminal Colors (lipgloss)
// -----------------------------------------------------------------------------

const (
	ColorUrgent = "#D32F2F" // red
	ColorNormal = "#F57C00" // orange
	ColorMuted  = "241"
)

// -----------------------------------------------------------------------------
// Defaults & Business Logic
// -----------------------------------------------------------------------------

const (
	BackendCSV      = "csv"
	BackendSQLite   = "sqlite"
	SourceModeWeb   = "web"
	SourceModeLocal = "local"

	LangRomanian    = "ro"
	LangEnglish     = "en"
	DefaultLanguage = LangRomanian

	DefaultPort     = 18080
	DefaultSchedule = "*/30 * * * *"
	DefaultLeapYear = 2000 // Leap year fallback for dates like --02-29

	// MaxAdvanceSteps bounds the recurrence stepping loop.
	MaxAdvanceSteps = 10000

	// ShortestMonthDays is the last day every month has.
	ShortestMonthDays = 28

	// MaxMonthDistance is the largest edit distance accepted for a month name.
	MaxMonthDistance = 2
	MinFuzzyMonthLen = 3

	UIDSalt = "go-reminder-v1-" // Salt for deterministic UID generation
)

// SupportedLanguages defines the list of available display languages (ISO 639-1).
var SupportedLanguages = []string{LangRomanian, LangEnglish}

// -----------------------------------------------------------------------------
// Record Tables (CSV files and SQLite tables)
// -----------------------------------------------------------------------------

const (
	TableEvents        = "informatii"
	TableAnniversaries = "aniversari"
	TableHolidays      = "sarbatori"
	ExtCSV             = ".csv"

	// Column names shared by all tables.
	ColLabel      = "eveniment"
	ColDate       = "data"
	ColLeadDays   = "avanszile"
	ColRecurrence = "ciclu"
	ColWeekend    = "weekend"
	ColUrgentDays = "rosu"
	ColStatus     = "stare"
	ColWork       = "serviciu"
	ColNotes      = "observatii"
	ColNotifyDate = "data_notificare"
	ColNextDate   = "data_urmatoare"
	ColDay        = "ziua"
	ColMonth      = "luna"
	ColKind       = "tip"
	ColCross      = "sarbatoare_cruce_rosie"

	// DateLayout is the day-month-year layout used in every table.
	DateLayout = "02-01-2006"

	StatusValueKeep = "pastreaza"
	StatusValueDone = "indeplinit"
	BoolValueTrue   = "True"
	BoolValueFalse  = "False"
	CrossValue      = "sărbătoare cu cruce roșie"
)

// EventColumns lists the header of the timed events table.
var EventColumns = []string{
	ColLabel, ColDate, ColLeadDays, ColRecurrence, ColWeekend, ColUrgentDays,
	ColStatus, ColWork, ColNotes, ColNotifyDate, ColNextDate,
}

// AnniversaryColumns lists the header of the anniversaries table.
var AnniversaryColumns = []string{
	ColLabel, ColDate, ColLeadDays, ColRecurrence, ColUrgentDays,
	ColStatus, ColNotes, ColNotifyDate, ColNextDate,
}

// HolidayColumns lists the header of the holidays table.
var HolidayColumns = []string{
	ColLabel, ColDay, ColMonth, ColLeadDays, ColUrgentDays, ColKind,
	ColCross, ColNotes, ColNotifyDate, ColNextDate,
}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyToday             = "countdown_today"
	TKeyTodayWeekend      = "countdown_today_weekend"
	TKeyTomorrow          = "countdown_tomorrow"
	TKeyTomorrowWeekend   = "countdown_tomorrow_weekend"
	TKeyYesterday         = "countdown_yesterday"
	TKeyTwoDaysAgo        = "countdown_two_days_ago"
	TKeyDaysAgo           = "countdown_days_ago"      // Requires Count
	TKeyCalendarDaysLeft  = "countdown_calendar_days" // Requires Count
	TKeyLastWorkingDay    = "countdown_last_working_day"
	TKeyTwoWorkingDays    = "countdown_two_working_days"
	TKeyWorkingDaysLeft   = "countdown_working_days"           // Requires Count
	TKeyWorkingDaysWithEv = "countdown_working_days_event_day" // Requires Count
	TKeyHolidayToday      = "holiday_today"
	TKeyHolidayTomorrow   = "holiday_tomorrow"
	TKeyHolidayInTwoDays  = "holiday_in_two_days"
	TKeyHolidayInDays     = "holiday_in_days"  // Requires Count
	TKeyAnniversaryAge    = "anniversary_age"  // Requires Count, Days
	TKeyDeadline          = "label_deadline"   // Requires Date
	TKeyRecurrence        = "label_recurrence" // Requires Rule
	TKeyWorkEvent         = "label_work_event"
	TKeyEmpty             = "label_empty"
	TKeyDateLong          = "format_date_long"       // Requires Weekday, Day, Month, Year
	TKeyJournalHeader     = "journal_header"         // Requires Time
	TKeyJournalEvent      = "journal_event"          // Requires Label, Date, Days, Recurrence, Urgent, Work, Notes
	TKeyJournalEventWeek  = "journal_event_workweek" // Requires Label, Date, Weekend, Workdays, Recurrence, Urgent, Work, Notes
	TKeyJournalAnnivers   = "journal_anniversary"    // Requires Label, Age, Date, Days, Urgent, Notes
	TKeyJournalHoliday    = "journal_holiday"        // Requires Label, Date, Days, Urgent, Kind, Cross, Notes
	TKeyYes               = "value_yes"
	TKeyNo                = "value_no"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Reminder//Engine//EN"
	ICalCalName   = "Reminders"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "goreminder"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"
	PropCategories  = "CATEGORIES"
	PropPriority    = "PRIORITY"

	// PriorityUrgent is the RFC 5545 priority assigned to urgent entries.
	PriorityUrgent = "1"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"

	DefaultICalRefresh = 1 * time.Hour

	ISONegativePrefix = "-P"
	ISODay            = "D"
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s|%s"
	FormatUID       = "%s@%s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	RouteNotifications  = "/notifications"
	RouteMetrics        = "/metrics"
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
	HeaderAccept          = "Accept"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeVCardAccept     = "text/vcard, text/x-vcard;q=0.9, */*;q=0.5"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty    = "configuration error: local path is empty"
	ErrWebURLEmpty       = "configuration error: web URL is empty"
	ErrFetcherMissing    = "internal error: network fetcher is not initialized"
	ErrModeUnsupport     = "configuration error: unsupported source mode"
	ErrBackendUnsupport  = "configuration error: unsupported storage backend"
	ErrSettingsLoad      = "failed to load settings"
	ErrSettingsInvalid   = "invalid settings"
	ErrSettingsSave      = "failed to save settings"
	ErrSettingsPathEmpty = "settings path is empty"
	ErrServerStartup     = "server startup failed"
	ErrServerShutdown    = "server shutdown failed"
	ErrPortRequired      = "server port is required"
	ErrInvalidURL        = "invalid URL structure"
	ErrProtocol          = "unsupported protocol scheme (http/https only)"
	ErrICalEncode        = "failed to encode iCalendar data"
	ErrJSONEncode        = "failed to encode notifications"
	ErrDateParse         = "unable to parse date"
	ErrLogFile           = "failed to open log file"
	ErrCacheDir          = "could not determine user cache dir"
	ErrCreateDir         = "could not create app cache dir"
	ErrAppFailed         = "application failed unexpectedly"
	ErrWriteResp         = "failed to write response body"
	ErrLocalesAccess     = "failed to access embedded locales"
	ErrLocaleLoad        = "failed to load locale file"
	ErrUnknownMonth      = "unknown month name"
	ErrUnknownCategory   = "unknown record category"
	ErrUnknownStatus     = "unknown record status"
	ErrRecordNotFound    = "record not found"
	ErrTableRead         = "failed to read table"
	ErrTableWrite        = "failed to write table"
	ErrTableHeader       = "table header is missing required columns"
	ErrDatabaseOpen      = "failed to open database"
	ErrMigration         = "failed to apply database migrations"
	ErrKeyringWrite      = "failed to store password in keyring"
	ErrSchedule          = "invalid refresh schedule"
	ErrJournalWrite      = "failed to write notification journal"
	ErrPassFailed        = "notification pass failed"
	ErrArgs              = "invalid arguments"
	ErrHolidayStatus     = "holidays have no status"
	ErrVCardRead         = "failed to read vCard source"
	ErrVCardTooLarge     = "address book exceeds the download size limit"
	ErrFetchRequest      = "failed to create address book request"
	ErrFetchNetwork      = "network error during address book download"
	ErrFetchStatus       = "address book server returned unexpected status"
	ErrFetchAuth         = "address book server rejected the credentials (check the keyring password)"
	ErrRowTooWide        = "row has more cells than the header"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Notifications initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackName = "Unknown"

	// StubVCalendar is the minimal valid iCalendar object used when nothing is active.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgPassStarted     = "Notification pass started"
	MsgPassFinished    = "Notification pass finished"
	MsgPassSkipped     = "Notification pass skipped"
	MsgWorkerStart     = "Background worker started"
	MsgWorkerStop      = "Worker stopping due to context cancellation"
	MsgAppStop         = "Application stopped gracefully"
	MsgAppStarting     = "Starting application"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgCacheUpdated    = "Notification cache updated"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgPassFail        = "Password retrieval failed (might be empty)"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
	MsgSkippedCard     = "Skipping malformed vCard"
	MsgSkippedDate     = "Skipping invalid date format"
	MsgSkippedRecord   = "Skipping record with invalid date"
	MsgMalformedRule   = "Malformed recurrence rule, treating as one-off"
	MsgCategoryDropped = "Category dropped from this pass"
	MsgStatusReset     = "Status reset to keep after rollover"
	MsgRowCoerced      = "Malformed number coerced to zero"
	MsgTableCreated    = "Created empty table"
	MsgMigrated        = "Database schema up to date"
	MsgSettingsDefault = "Settings file not found, using defaults"
	MsgFeedGenerated   = "Calendar feed generated"
	MsgJournalWritten  = "Notification journal written"
	MsgPassPublished   = "Notification pass published"
	MsgVCardOpen       = "Opening vCard source"
	MsgVCardDecoded    = "vCard address book decoded"
	MsgStoreOpened     = "Record store opened"
	MsgImported        = "Anniversaries imported"
	MsgFetchStart      = "Downloading address book"
	MsgFetchRejected   = "Address book server returned an error status"
	MsgFetchReceiving  = "Address book download in progress"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeySchedule  = "schedule"
	LogKeyUser      = "user"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyCount     = "count"
	LogKeyDuration  = "duration_ms"
	LogKeyCategory  = "category"
	LogKeyRecordID  = "record_id"
	LogKeyRule      = "rule"
	LogKeyPassID    = "pass_id"
	LogKeyEvaluated = "evaluated"
	LogKeyActive    = "active"
	LogKeyResets    = "resets"
	LogKeyDropped   = "dropped"
	LogKeyBackend   = "backend"
	LogKeyColumn    = "column"
	LogKeyRow       = "row"
	LogKeyNext      = "next_occurrence"
	LogKeyUrgent    = "urgent"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
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
	CompEngine   = "engine"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompWorker   = "worker"
	CompMain     = "main"
	CompI18n     = "i18n"
	CompStore    = "store"
	CompFeed     = "feed"
	CompSettings = "settings"
	CompCLI      = "cli"
)
