// Package autherr maps backend authentication error identifiers onto a small,
// closed vocabulary of error kinds, each with a user-facing sentence.
package autherr

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind is the stable classification of an authentication failure.
type Kind string

const (
	KindNone           Kind = ""
	KindBadCredentials Kind = "BAD_CREDENTIALS"
	KindAccountLocked  Kind = "ACCOUNT_LOCKED"
	KindUserDisabled   Kind = "USER_DISABLED"
	KindRateLimited    Kind = "RATE_LIMITED"
	KindNetwork        Kind = "NETWORK"
	KindServerError    Kind = "SERVER_ERROR"
	KindUnknown        Kind = "UNKNOWN"
)

// DefaultMessage is returned when there is no code to classify and no fallback.
const DefaultMessage = "Authentication error"

var messages = map[Kind]string{
	KindBadCredentials: "Email or password is incorrect.",
	KindAccountLocked:  "Your account is locked. Please contact support to unlock it.",
	KindUserDisabled:   "This account has been disabled.",
	KindRateLimited:    "Too many attempts. Please wait a moment and try again.",
	KindNetwork:        "Unable to reach the server. Check your connection and try again.",
	KindServerError:    "The server ran into a problem. Please try again later.",
	KindUnknown:        "Something went wrong. Please try again.",
}

var exact = map[string]Kind{
	"BAD_CREDENTIALS":   KindBadCredentials,
	"INVALID_PASSWORD":  KindBadCredentials,
	"UNAUTHORIZED":      KindBadCredentials,
	"FORBIDDEN":         KindBadCredentials,
	"ACCOUNT_LOCKED":    KindAccountLocked,
	"USER_DISABLED":     KindUserDisabled,
	"NETWORK_DISABLED":  KindNetwork,
	"OFFLINE":           KindNetwork,
	"TOO_MANY_REQUESTS": KindRateLimited,
}

var (
	nonAlnum  = regexp.MustCompile(`[^A-Z0-9]+`)
	camelEdge = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	nonWord   = regexp.MustCompile(`[^a-z0-9]+`)

	// Matched against whole words of the raw code, so "clock" or
	// "generate_limits" never count.
	reLock     = regexp.MustCompile(`^lock(ed|out|s)?$`)
	reDisabled = regexp.MustCompile(`disabled$`)
	reRate     = regexp.MustCompile(`^(rate(limit(ed|s)?)?|throttl\w*|toomany\w*)$`)
	reNetwork  = regexp.MustCompile(`^(network|offline|fetch)`)
	reServer   = regexp.MustCompile(`^(server|internal)(error|failure)?$`)
)

// lockTokens are the whole tokens that mean a locked account.
var lockTokens = map[string]bool{"LOCK": true, "LOCKED": true, "LOCKOUT": true, "LOCKS": true}

// Result is the outcome of Normalize.
type Result struct {
	Kind    Kind
	Message string
}

// Message returns the friendly sentence for kind. Unrecognized kinds get the
// UNKNOWN sentence.
func Message(kind Kind) string {
	if m, ok := messages[kind]; ok {
		return m
	}
	return messages[KindUnknown]
}

// Normalize classifies rawCode. An empty rawCode yields KindNone with the
// fallback message (or DefaultMessage). Any other input, blank ones included,
// resolves to exactly one kind; the raw code itself never leaks into the
// message.
func Normalize(rawCode, fallback string) Result {
	if rawCode == "" {
		if fallback == "" {
			fallback = DefaultMessage
		}
		return Result{Kind: KindNone, Message: fallback}
	}
	kind := Classify(rawCode)
	return Result{Kind: kind, Message: Message(kind)}
}

// Classify resolves rawCode to a Kind. Resolution order matters: a code such
// as "NETWORK_DISABLED" must land on NETWORK, never USER_DISABLED.
func Classify(rawCode string) Kind {
	canon := Canonicalize(rawCode)

	if k, ok := exact[canon]; ok {
		return k
	}
	if k, ok := fromStatus(canon); ok {
		return k
	}
	if k, ok := fromTokens(strings.Split(canon, "_")); ok {
		return k
	}
	if k, ok := fromPattern(rawCode); ok {
		return k
	}
	return KindUnknown
}

// Canonicalize upper-cases and trims s, then collapses every run of
// non-alphanumeric characters into a single underscore.
func Canonicalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = nonAlnum.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

func fromStatus(canon string) (Kind, bool) {
	code, err := strconv.Atoi(canon)
	if err != nil || len(canon) != 3 {
		return KindNone, false
	}
	switch {
	case code == 401, code == 403:
		return KindBadCredentials, true
	case code == 429:
		return KindRateLimited, true
	case code >= 500 && code <= 599:
		return KindServerError, true
	}
	return KindNone, false
}

func fromTokens(tokens []string) (Kind, bool) {
	set := make(map[string]bool, len(tokens))
	lock := false
	for _, t := range tokens {
		if t == "" {
			continue
		}
		set[t] = true
		if lockTokens[t] {
			lock = true
		}
	}

	network := set["NETWORK"] || set["OFFLINE"] || set["FETCH"]
	switch {
	case lock:
		return KindAccountLocked, true
	case set["DISABLED"] && !network:
		return KindUserDisabled, true
	case set["RATE"] || set["THROTTLE"] || set["THROTTLED"] || (set["TOO"] && set["MANY"]):
		return KindRateLimited, true
	case network:
		return KindNetwork, true
	case set["SERVER"] || set["INTERNAL"]:
		return KindServerError, true
	}
	return KindNone, false
}

func fromPattern(raw string) (Kind, bool) {
	ws := words(raw)
	network := anyWord(reNetwork, ws)
	switch {
	case anyWord(reLock, ws):
		return KindAccountLocked, true
	case anyWord(reDisabled, ws) && !network:
		return KindUserDisabled, true
	case anyWord(reRate, ws) || adjacent(ws, "too", "many"):
		return KindRateLimited, true
	case network:
		return KindNetwork, true
	case anyWord(reServer, ws):
		return KindServerError, true
	}
	return KindNone, false
}

// words splits raw on punctuation and camelCase edges, lower-cased:
// "accountLocked" gives [account locked].
func words(raw string) []string {
	s := strings.ToLower(camelEdge.ReplaceAllString(raw, "${1}_${2}"))
	return strings.Fields(nonWord.ReplaceAllString(s, " "))
}

func adjacent(ws []string, a, b string) bool {
	for i := 1; i < len(ws); i++ {
		if ws[i-1] == a && ws[i] == b {
			return true
		}
	}
	return false
}

func anyWord(re *regexp.Regexp, ws []string) bool {
	for _, w := range ws {
		if re.MatchString(w) {
			return true
		}
	}
	return false
}
