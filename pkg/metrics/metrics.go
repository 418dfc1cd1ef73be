// Package metrics defines and registers all custom Prometheus metrics for the
// records API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "records"

// ── Authentication ───────────────────────────────────────────────────────────

// AuthFailuresTotal counts rejected principal resolutions.
// Label:
//   - reason: "token_missing", "invalid_signature", "expired", "malformed_claims",
//     "unknown_account", "account_deleted", "bad_credentials"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of rejected authentications, by internal reason.",
	},
	[]string{"reason"},
)

// TokensIssuedTotal counts successful logins.
var TokensIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of access tokens issued.",
	},
)

// ── Integrity ────────────────────────────────────────────────────────────────

// ValidationConflictsTotal counts uniqueness violations caught before writing.
// Labels:
//   - kind: entity kind ("account", "item", ...)
//   - field: the conflicting field
var ValidationConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_conflicts_total",
		Help:      "Total number of uniqueness conflicts detected by the validation engine.",
	},
	[]string{"kind", "field"},
)

// StorageConflictsTotal counts uniqueness violations only caught by the store.
var StorageConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storage_conflicts_total",
		Help:      "Total number of unique constraint violations reported by the store.",
	},
)

// ── Lifecycle ────────────────────────────────────────────────────────────────

// AccountsDeletedTotal counts account deactivations.
// Label:
//   - provenance: "self" or "admin"
var AccountsDeletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_deleted_total",
		Help:      "Total number of accounts deactivated, by provenance.",
	},
	[]string{"provenance"},
)

// CascadeDeletedRecordsTotal counts owned records removed by account deletion.
// Label:
//   - kind: "post" or "item"
var CascadeDeletedRecordsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascade_deleted_records_total",
		Help:      "Total number of owned records hard-deleted by account deletion.",
	},
	[]string{"kind"},
)

// AdminRoleChangesTotal counts promotions and demotions.
// Label:
//   - action: "promote" or "demote"
var AdminRoleChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_role_changes_total",
		Help:      "Total number of admin role changes.",
	},
	[]string{"action"},
)

// IdempotentReplaysTotal counts creations answered from an Idempotency-Key.
// Label:
//   - kind: "post" or "item"
var IdempotentReplaysTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotent_replays_total",
		Help:      "Total number of create requests replayed from an idempotency key.",
	},
	[]string{"kind"},
)
