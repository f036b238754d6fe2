package internaldefs

import (
	adauth "github.com/adverto/adauth"
)

// CounterDef binds a core [adauth.MetricID] to its exported metric name.
type CounterDef struct {
	ID   adauth.MetricID
	Name string
	Help string
}

// HistogramDef binds a core histogram [adauth.MetricID] to its exported
// metric name.
type HistogramDef struct {
	ID   adauth.MetricID
	Name string
	Help string
}

// CounterDefs is the full exported counter table, in exposition order.
var CounterDefs = []CounterDef{
	{ID: adauth.MetricRegistrationRequest, Name: "adauth_registration_request_total", Help: "Registration code requests."},
	{ID: adauth.MetricRegistrationSuccess, Name: "adauth_registration_success_total", Help: "Completed registrations."},
	{ID: adauth.MetricRegistrationFailure, Name: "adauth_registration_failure_total", Help: "Rejected registration requests and confirmations."},
	{ID: adauth.MetricLoginCodeRequest, Name: "adauth_login_code_request_total", Help: "Login code requests."},
	{ID: adauth.MetricLoginSuccess, Name: "adauth_login_success_total", Help: "Completed code logins."},
	{ID: adauth.MetricLoginFailure, Name: "adauth_login_failure_total", Help: "Rejected login requests and confirmations."},
	{ID: adauth.MetricEmailChangeRequest, Name: "adauth_email_change_request_total", Help: "Email-change code requests."},
	{ID: adauth.MetricEmailChangeSuccess, Name: "adauth_email_change_success_total", Help: "Applied email changes."},
	{ID: adauth.MetricEmailChangeFailure, Name: "adauth_email_change_failure_total", Help: "Rejected email-change requests and confirmations."},
	{ID: adauth.MetricChallengeExpired, Name: "adauth_challenge_expired_total", Help: "Consume attempts on stale challenges."},
	{ID: adauth.MetricChallengeCodeMismatch, Name: "adauth_challenge_code_mismatch_total", Help: "Consume attempts with a wrong code."},
	{ID: adauth.MetricMailDispatchFailure, Name: "adauth_mail_dispatch_failure_total", Help: "Verification emails that failed to send."},
	{ID: adauth.MetricCacheFallback, Name: "adauth_cache_fallback_total", Help: "Cache operations degraded to the in-process fallback."},
	{ID: adauth.MetricTokenIssued, Name: "adauth_token_issued_total", Help: "Minted session credentials."},
	{ID: adauth.MetricAuthenticateSuccess, Name: "adauth_authenticate_success_total", Help: "Credential verifications that produced a session."},
	{ID: adauth.MetricAuthenticateFailure, Name: "adauth_authenticate_failure_total", Help: "Credential verifications collapsed to unauthenticated."},
}

// HistogramDefs is the full exported histogram table.
var HistogramDefs = []HistogramDef{
	{ID: adauth.MetricAuthenticateLatency, Name: "adauth_authenticate_latency_seconds", Help: "Authenticate latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, matching the
// core histogram layout.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are bound labels usable inside metric names for
// backends that cannot carry `le` labels.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed
// core layout.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form
// Prometheus histograms expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
