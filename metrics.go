package tenauth

import "sync/atomic"

// MetricID identifies one counter in the in-process metrics system.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricIssueSuccess is an exported constant or variable used by the authentication core.
	MetricIssueSuccess MetricID = iota
	// MetricIssueFailure is an exported constant or variable used by the authentication core.
	MetricIssueFailure
	// MetricLoginSuccess is an exported constant or variable used by the authentication core.
	MetricLoginSuccess
	// MetricLoginFailure is an exported constant or variable used by the authentication core.
	MetricLoginFailure
	// MetricRegisterSuccess is an exported constant or variable used by the authentication core.
	MetricRegisterSuccess
	// MetricRegisterDuplicate is an exported constant or variable used by the authentication core.
	MetricRegisterDuplicate
	// MetricRefreshSuccess is an exported constant or variable used by the authentication core.
	MetricRefreshSuccess
	// MetricRefreshRevoked is an exported constant or variable used by the authentication core.
	MetricRefreshRevoked
	// MetricRefreshFailure is an exported constant or variable used by the authentication core.
	MetricRefreshFailure
	// MetricLogout is an exported constant or variable used by the authentication core.
	MetricLogout
	// MetricLogoutAll is an exported constant or variable used by the authentication core.
	MetricLogoutAll
	// MetricAccessVerifyFailure is an exported constant or variable used by the authentication core.
	MetricAccessVerifyFailure
	// MetricRoleDenied is an exported constant or variable used by the authentication core.
	MetricRoleDenied

	metricIDCount
)

// MetricNames maps each counter to its stable export name. Exporters key
// their instruments off this table.
var MetricNames = map[MetricID]string{
	MetricIssueSuccess:        "tenauth_issue_success_total",
	MetricIssueFailure:        "tenauth_issue_failure_total",
	MetricLoginSuccess:        "tenauth_login_success_total",
	MetricLoginFailure:        "tenauth_login_failure_total",
	MetricRegisterSuccess:     "tenauth_register_success_total",
	MetricRegisterDuplicate:   "tenauth_register_duplicate_total",
	MetricRefreshSuccess:      "tenauth_refresh_success_total",
	MetricRefreshRevoked:      "tenauth_refresh_revoked_total",
	MetricRefreshFailure:      "tenauth_refresh_failure_total",
	MetricLogout:              "tenauth_logout_total",
	MetricLogoutAll:           "tenauth_logout_all_total",
	MetricAccessVerifyFailure: "tenauth_access_verify_failure_total",
	MetricRoleDenied:          "tenauth_role_denied_total",
}

// MetricHelp maps each counter to its export description.
var MetricHelp = map[MetricID]string{
	MetricIssueSuccess:        "Successful credential issuances.",
	MetricIssueFailure:        "Failed credential issuances.",
	MetricLoginSuccess:        "Successful login attempts.",
	MetricLoginFailure:        "Failed login attempts.",
	MetricRegisterSuccess:     "Successful account registrations.",
	MetricRegisterDuplicate:   "Registrations rejected as duplicate.",
	MetricRefreshSuccess:      "Successful refresh rotations.",
	MetricRefreshRevoked:      "Refresh attempts against revoked records.",
	MetricRefreshFailure:      "Failed refresh rotations.",
	MetricLogout:              "Single-session logout operations.",
	MetricLogoutAll:           "Logout-all operations.",
	MetricAccessVerifyFailure: "Rejected access token verifications.",
	MetricRoleDenied:          "Requests rejected by the role gate.",
}

// Metrics holds atomic counters. All operations on a disabled instance are
// no-ops; a nil *Metrics is likewise safe.
//
// Metrics instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// NewMetrics creates a [Metrics] instance configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments one counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= metricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

// MetricsSnapshot is a point-in-time copy of all counters.
//
// MetricsSnapshot instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot deep-copies the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
