package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}
type countryContextKey struct{}

var (
	LocaleKey  = localeContextKey{}
	CountryKey = countryContextKey{}
)

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// I18N resolves the requester's locale and country and stores them in the
// request context. The locale is the fallback translation target for
// participants whose profile has no preferred language.
func I18N(defaultLocale string, lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			country := ResolveCountry(r, lookup)
			locale := detectLocale(r, defaultLocale)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			if country != "" {
				ctx = context.WithValue(ctx, CountryKey, strings.ToUpper(country))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback string) string {
	if v := normalizeLocale(r.Header.Get("X-Locale")); v != "" {
		return v
	}
	if v := parseAcceptLanguage(r.Header.Get("Accept-Language")); v != "" {
		return v
	}
	if v := normalizeLocale(fallback); v != "" {
		return v
	}
	return "en"
}

// parseAcceptLanguage returns the base language of the best Accept-Language
// entry.
func parseAcceptLanguage(header string) string {
	if header == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	base, conf := tags[0].Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}

// normalizeLocale reduces a locale value to its base language tag, or ""
// when unparseable.
func normalizeLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return ""
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}

// ResolveCountry resolves a best-effort ISO country code for the request:
// proxy headers first, then the GeoIP resolver.
func ResolveCountry(r *http.Request, lookup CountryLookup) string {
	if r == nil {
		return ""
	}
	headerHints := []string{"X-Country-Code", "X-IP-Country", "CF-IPCountry", "X-Appengine-Country"}
	for _, key := range headerHints {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			return strings.ToUpper(val)
		}
	}
	if lookup != nil {
		if code, err := lookup(ClientIP(r)); err == nil && code != "" {
			return strings.ToUpper(code)
		}
	}
	return ""
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LocaleFromContext returns the locale stored by I18N, defaulting to "en".
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok {
		return v
	}
	return "en"
}

// CountryFromContext returns the ISO country code stored in the request context.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CountryKey).(string); ok {
		return v
	}
	return ""
}
