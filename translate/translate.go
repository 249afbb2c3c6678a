// Package translate formats user visible messages for the local language.
package translate

import (
	"log"
	"os"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

// LANG_ENV overrides the detected system locales when set.
const LANG_ENV = "REGVM_LANG"

var (
	printer     *message.Printer
	printerOnce sync.Once
)

// Locales returns the preferred locales, most preferred first.
func Locales() (locales []string) {
	if lang := os.Getenv(LANG_ENV); len(lang) != 0 {
		locales = append(locales, lang)
	}

	found, err := locale.GetLocales()
	if err != nil {
		log.Printf("regvm: locale: %v", err)
	}
	locales = append(locales, found...)

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	return
}

// Printer returns the shared message printer.
func Printer() *message.Printer {
	printerOnce.Do(func() {
		printer = message.NewPrinter(message.MatchLanguage(Locales()...))
	})

	return printer
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return Printer().Sprintf(key, args...)
}
