// Package replay records live HTTP interactions to disk and replays them.
//
// A Client fingerprints each normalized request and looks for a stored entry
// at the path the Target derives from that fingerprint. When the entry exists,
// carries the current FormatVersion and its request is structurally equal to
// the incoming one, the stored response is returned and no network call is
// made. Otherwise, depending on the RecordMode, the request is either sent to
// the live transport and the result persisted, or refused with a
// PolicyViolationError.
//
// # Targets
//
//   - File(path): a single entry; a changed request overwrites it
//   - Dir(path): one entry per fingerprint, named "<hex>.json"
//
// # Document Format
//
//	{
//	  "format_version": 2,
//	  "request":  {"url": "...", "method": "GET", "headers": {"Name": "v"}, "body": "<base64>" | null},
//	  "response": {"url": "...", "status": 200, "headers": {"Name": "v"}, "body": "<base64>"}
//	}
//
// Documents with any other format_version are treated as absent and are
// re-recorded on the next request. Documents that fail to parse, or do not
// satisfy the embedded JSON Schema, are reported as SerializationError and
// are never overwritten silently.
//
// The package performs no cross-process locking. Concurrent writers to the
// same path resolve last-writer-wins; each write goes to a temporary file that
// is renamed into place, so readers never observe a partial document.
package replay
