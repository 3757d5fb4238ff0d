package ui

import (
	"strconv"

	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

// NumericalEntry is an Entry restricted to digits, used for the horizon and
// the server port.
type NumericalEntry struct {
	widget.Entry
}

// NewNumericalEntry creates a NumericalEntry.
func NewNumericalEntry() *NumericalEntry {
	entry := &NumericalEntry{}
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedRune drops every rune that is not a digit. Pasted text bypasses this
// filter and is left to the Validator.
func (e *NumericalEntry) TypedRune(r rune) {
	if r >= '0' && r <= '9' {
		e.Entry.TypedRune(r)
	}
}

// Keyboard requests the numeric keypad on mobile.
func (e *NumericalEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}

// Int parses the current text.
func (e *NumericalEntry) Int() (int, bool) {
	n, err := strconv.Atoi(e.Text)
	return n, err == nil
}

// SetInt replaces the text with n.
func (e *NumericalEntry) SetInt(n int) {
	e.SetText(strconv.Itoa(n))
}
