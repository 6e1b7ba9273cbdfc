package autherr

import (
	"strconv"
	"testing"
)

func TestNormalize_Empty(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		fallback string
		want     string
	}{
		{"no fallback", "", "", DefaultMessage},
		{"with fallback", "", "401 Unauthorized", "401 Unauthorized"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw, tt.fallback)
			if got.Kind != KindNone {
				t.Errorf("Kind = %q, want empty", got.Kind)
			}
			if got.Message != tt.want {
				t.Errorf("Message = %q, want %q", got.Message, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		want Kind
	}{
		// exact table
		{"BAD_CREDENTIALS", KindBadCredentials},
		{"invalid password", KindBadCredentials},
		{"Unauthorized", KindBadCredentials},
		{"forbidden", KindBadCredentials},
		{"account-locked", KindAccountLocked},
		{"USER_DISABLED", KindUserDisabled},
		{"NETWORK_DISABLED", KindNetwork},
		{"  network  disabled ", KindNetwork},
		{"offline", KindNetwork},
		{"too many requests", KindRateLimited},

		// status codes
		{"401", KindBadCredentials},
		{"403", KindBadCredentials},
		{"429", KindRateLimited},
		{"500", KindServerError},
		{"503", KindServerError},
		{"404", KindUnknown},

		// tokens
		{"ACCOUNT_LOCKED_OUT", KindAccountLocked},
		{"USER_LOCKOUT", KindAccountLocked},
		{"ACCOUNT_DISABLED", KindUserDisabled},
		{"NETWORK_INTERFACE_DISABLED", KindNetwork},
		{"RATE_EXCEEDED", KindRateLimited},
		{"REQUEST_THROTTLED", KindRateLimited},
		{"TOO_MANY_ATTEMPTS", KindRateLimited},
		{"FETCH_FAILED", KindNetwork},
		{"INTERNAL_SERVER_ERROR", KindServerError},

		// pattern fallback on the raw string
		{"accountLocked", KindAccountLocked},
		{"userDisabled", KindUserDisabled},
		{"networkDisabled", KindNetwork},
		{"rateLimited", KindRateLimited},
		{"fetchError", KindNetwork},
		{"internalError", KindServerError},

		// default
		{"EMAIL_EXISTS", KindUnknown},
		{"something odd", KindUnknown},
		{"!!!", KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := Classify(tt.raw); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalize_BlankIsNotAbsent(t *testing.T) {
	for _, raw := range []string{" ", "   ", "\t\n", "---"} {
		got := Normalize(raw, "fallback")
		if got.Kind != KindUnknown {
			t.Errorf("Normalize(%q).Kind = %q, want %q", raw, got.Kind, KindUnknown)
		}
		if got.Message != Message(KindUnknown) {
			t.Errorf("Normalize(%q).Message = %q, want the UNKNOWN sentence", raw, got.Message)
		}
	}
}

func TestClassify_WholeWordsOnly(t *testing.T) {
	tests := []struct {
		raw  string
		want Kind
	}{
		{"CLOCK_SKEW", KindUnknown},
		{"BLOCKED_IP", KindUnknown},
		{"clockSkew", KindUnknown},
		{"ip-blocked", KindUnknown},
		{"generate_limits", KindUnknown},
		{"accurate limit", KindUnknown},
		{"desperate", KindUnknown},
		{"serverless_quota", KindUnknown},
		{"internalFailure", KindServerError},
		{"LOCKED", KindAccountLocked},
		{"lock-out", KindAccountLocked},
		{"accountLockout", KindAccountLocked},
		{"rate_limit_exceeded", KindRateLimited},
		{"rateLimitExceeded", KindRateLimited},
		{"tooManyRequests", KindRateLimited},
		{"throttling", KindRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := Classify(tt.raw); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestClassify_NetworkBeatsDisabled(t *testing.T) {
	inputs := []string{
		"NETWORK_DISABLED",
		"DISABLED_NETWORK",
		"network.disabled",
		"Network Adapter Disabled",
		"disabled-by-network",
		"OFFLINE_DISABLED",
		"networkdisabled",
	}
	for _, raw := range inputs {
		if got := Classify(raw); got != KindNetwork {
			t.Errorf("Classify(%q) = %q, want %q", raw, got, KindNetwork)
		}
	}
}

func TestClassify_AllServerStatuses(t *testing.T) {
	for code := 500; code <= 599; code++ {
		raw := strconv.Itoa(code)
		if got := Classify(raw); got != KindServerError {
			t.Errorf("Classify(%q) = %q, want %q", raw, got, KindServerError)
		}
	}
}

func TestNormalize_FriendlyMessages(t *testing.T) {
	got := Normalize("BAD_CREDENTIALS", "401 Unauthorized")
	if got.Kind != KindBadCredentials {
		t.Fatalf("Kind = %q, want %q", got.Kind, KindBadCredentials)
	}
	if got.Message != "Email or password is incorrect." {
		t.Errorf("Message = %q", got.Message)
	}

	unknown := Normalize("WEIRD_BACKEND_CODE", "fallback")
	if unknown.Kind != KindUnknown {
		t.Fatalf("Kind = %q, want %q", unknown.Kind, KindUnknown)
	}
	if unknown.Message != Message(KindUnknown) {
		t.Errorf("Message = %q, want the UNKNOWN sentence", unknown.Message)
	}
}

func TestMessage_EveryKind(t *testing.T) {
	kinds := []Kind{
		KindBadCredentials, KindAccountLocked, KindUserDisabled,
		KindRateLimited, KindNetwork, KindServerError, KindUnknown,
	}
	seen := map[string]Kind{}
	for _, k := range kinds {
		m := Message(k)
		if m == "" {
			t.Errorf("Message(%q) is empty", k)
		}
		if prev, dup := seen[m]; dup {
			t.Errorf("Message(%q) duplicates Message(%q)", k, prev)
		}
		seen[m] = k
	}
	if Message("NOT_A_KIND") != Message(KindUnknown) {
		t.Error("unrecognized kind should map to the UNKNOWN sentence")
	}
}
