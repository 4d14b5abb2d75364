// Package saves implements the durable save queue: it accepts user save
// requests, attempts immediate delivery to the backend, falls back to
// persisted pending records, and guarantees eventual, idempotent delivery
// across restarts and connectivity gaps.
//
// # Idempotence
//
// Every record's id is a deterministic fingerprint of its payload, and
// storage upserts by id, so re-submitting the same logical item replaces the
// prior entry instead of accumulating duplicates. Within storage, upserts
// are atomic per id; that single-writer point is what closes the lost-update
// race of a load-all/store-all layout.
//
// # Delivery model
//
// Immediate delivery failure is not a user-visible failure: the record is
// persisted as pending ("saved, will sync later"), a targeted retry fires
// after a short delay, and a periodic resync sweep retries every pending
// record, once shortly after process start and then at a fixed interval,
// forever, with no max-attempt cutoff. Only two conditions surface as
// errors: a missing session and an explicit credential rejection by the
// backend, both reported as ErrAuthRequired.
//
// State machine of a record:
//
//	(none) --submit, delivery fails--> pending --retry succeeds--> synced
//	(none) --submit, delivery succeeds-----------------------------> synced
//
// No transition ever leaves synced.
package saves
