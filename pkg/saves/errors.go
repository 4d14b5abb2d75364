package saves

import "errors"

var (
	// ErrAuthRequired indicates a save was attempted without a valid
	// session, or the backend rejected the current credentials. The caller
	// must re-authenticate (or refresh) and resubmit; the queue never
	// silently retries with the same token.
	ErrAuthRequired = errors.New("saves.auth_required")

	// ErrUnauthorized is the sentinel Submitter implementations wrap when
	// the submit endpoint answers 401/403, so the queue can tell credential
	// failures apart from transient delivery failures.
	ErrUnauthorized = errors.New("saves.delivery_unauthorized")

	// ErrRecordNotFound indicates no record exists under the given id.
	ErrRecordNotFound = errors.New("saves.record_not_found")

	// ErrEmptyRecordID indicates a record without an id reached storage.
	ErrEmptyRecordID = errors.New("saves.empty_record_id")

	// ErrEmptyPayload indicates a save request with nothing to save.
	ErrEmptyPayload = errors.New("saves.empty_payload")

	// ErrNilStorage is returned when a queue is built without storage.
	ErrNilStorage = errors.New("saves.nil_storage")

	// ErrNilSubmitter is returned when a queue is built without a submitter.
	ErrNilSubmitter = errors.New("saves.nil_submitter")
)
