// Package ledger keeps a local history of conversion runs in SQLite.
// Recording is best-effort: a broken ledger never fails a conversion.
package ledger
