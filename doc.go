// Package collector implements a monitoring-data collection endpoint.
//
// External agents authenticate with a key and submit a named value for a
// project/item pair. The server validates the envelope, resolves the
// project within the caller's groups, resolves the enabled item, coerces
// the value to the item's declared type and persists it together with an
// append-only history record in one transaction.
//
// Items declare one of five types: integer, float, text, boolean or
// decimal. The ingestion flow uses strict coercion and rejects values it
// cannot convert; administrative save paths use lenient coercion that nulls
// the value instead.
//
// Features:
//   - REST endpoint for submitting values, with per-request audit history
//   - Group-scoped project authorization with indistinguishable not-found
//     responses for missing and forbidden records
//   - In-memory or PostgreSQL storage
//   - Data compression using gzip on requests and responses
//   - Audit event fan-out to file or HTTP endpoint
//   - Graceful shutdown handling
//   - Structured logging
//
// The module includes a sample agent that reports system readings and a
// seed tool for loading project/item fixtures.
//
// All components support configuration via command-line flags and
// environment variables.
package collector
