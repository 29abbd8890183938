// Package ui provides semantic text formatting for tru's terminal output.
//
// Formatters colorize text when the terminal supports it. When NO_COLOR is
// set, color is disabled through the configuration, or stdout is not a
// terminal, plain text is produced instead, with light decoration where the
// meaning would otherwise be lost:
//
//	ui.Code.Sprint("tru setup")        // `tru setup` without color
//	ui.Highlight.Sprint(recoveryCode)  // 'code' without color
//	ui.Muted.Sprint("trashed")         // (trashed) without color
package ui
