package config

import "strings"

// DetectSystemLocale returns the culture name described by the first non empty
// POSIX locale variable among keys, e.g. "ja_JP.UTF-8" becomes "ja-JP".
// The C and POSIX locales map to the invariant culture, represented by "".
func DetectSystemLocale(getenv func(string) string, keys ...string) string {
	for _, key := range keys {
		value := strings.TrimSpace(getenv(key))
		if value == "" {
			continue
		}
		return NormalizePOSIXLocale(value)
	}
	return ""
}

// NormalizePOSIXLocale converts a POSIX locale string into a BCP 47 style name.
func NormalizePOSIXLocale(value string) string {
	value = strings.TrimSpace(value)

	// drop the codeset and modifier: ll_CC.codeset@modifier
	if i := strings.IndexAny(value, ".@"); i >= 0 {
		value = value[:i]
	}

	switch strings.ToUpper(value) {
	case "", "C", "POSIX":
		return ""
	}

	return strings.ReplaceAll(value, "_", "-")
}
