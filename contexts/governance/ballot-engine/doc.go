// Package ballotengine implements the weighted ballot engine inside the
// governance context.
//
// The module owns the admin-gated voting-power ledger, poll lifecycle
// (create/cancel plus time-derived status), weighted vote casting with
// per-(poll, voter) receipts, and poll/ledger event production through
// outbox-backed workers. It keeps business rules in application/domain
// layers and isolates infrastructure concerns behind ports and adapters.
package ballotengine
