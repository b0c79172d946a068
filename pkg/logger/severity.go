package logger

import "strings"

// Severity :
// Describes the various available log severities that can be
// used in conjunction with the logger interface. The severity
// is used both to filter messages and to color them.
type Severity int

// Definition of the possible severities for a log message.
const (
	Verbose Severity = iota
	Debug
	Info
	Notice
	Warning
	Error
	Critical
	Fatal
)

// Name :
// Provides a human readable string for the severity. This is
// used when actually producing the logs for a given level.
//
// Returns the string representing the input log level.
func (s Severity) Name() string {
	return [...]string{
		"verbose",
		"debug",
		"info",
		"notice",
		"warning",
		"error",
		"critical",
		"fatal",
	}[s]
}

// Color :
// Provides a color value representing the severity. This is
// used as a visual way to distinguish between severities when
// displayed in a logging device.
//
// Returns the color associated to this severity.
func (s Severity) Color() Color {
	return [...]Color{
		Grey,
		Blue,
		Green,
		Cyan,
		Yellow,
		Red,
		Red,
		Red,
	}[s]
}

// String :
// Provides a complete string representing the input severity
// including the color formatting that matches its importance.
//
// Returns the string allowing to format the display device to
// print this severity.
func (s Severity) String() string {
	return FormatWithBrackets(s.Name(), s.Color())
}

// fromString :
// Converts the input string into the corresponding severity
// value. In case the input string does not correspond to any
// known severity a `verbose` severity is returned. The case
// of the input string is not relevant.
//
// The `level` represents the string to convert to a severity.
//
// Returns the severity associated to the input string.
func fromString(level string) Severity {
	switch strings.ToLower(level) {
	case "debug":
		return Debug
	case "info":
		return Info
	case "notice":
		return Notice
	case "warning":
		return Warning
	case "error":
		return Error
	case "critical":
		return Critical
	case "fatal":
		return Fatal
	case "verbose":
		fallthrough
	default:
		// Assume verbose by default.
		return Verbose
	}
}
