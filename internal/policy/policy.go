// Package policy holds the exclusion decision shared by the scheduled scan and
// the manual suspend-now path, so both paths spare exactly the same tabs.
package policy

import (
	"strings"

	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/config"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/model"
)

// protectedSchemes are internal/system and extension pages. Suspending these
// breaks browser UI surfaces, so they are never eligible.
var protectedSchemes = map[string]struct{}{
	"about":            {},
	"chrome":           {},
	"chrome-extension": {},
	"moz-extension":    {},
	"resource":         {},
	"view-source":      {},
	"edge":             {},
	"devtools":         {},
}

// IsExcluded reports whether a tab must not be suspended under the given
// settings. Rules short-circuit in a fixed order: active, already suspended,
// pinned, audible, protected URL scheme.
func IsExcluded(tab model.Tab, s config.Settings) bool {
	switch {
	case tab.Active:
		return true
	case tab.Discarded:
		return true
	case s.ExcludePinned && tab.Pinned:
		return true
	case s.ExcludeAudible && tab.Audible:
		return true
	case isProtectedURL(tab.URL):
		return true
	}
	return false
}

func isProtectedURL(raw string) bool {
	scheme, _, ok := strings.Cut(raw, ":")
	if !ok {
		// no scheme at all, malformed URLs are not protected
		return false
	}
	_, protected := protectedSchemes[strings.ToLower(scheme)]
	return protected
}
