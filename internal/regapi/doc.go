// Package regapi is a client for the capability based registration API.
//
// A session starts with a POST of account credentials to a bootstrap URL.
// The server answers with an LLSD map of capability name to URL; every
// further operation is only reachable through the URL it was granted:
//
//	get_error_codes  GET   -> array of [code, description]
//	get_last_names   GET   -> map of last name id -> last name
//	check_name       POST  {username, last_name_id} -> boolean
//	create_user      POST  {username, last_name_id, email, password, dob, ...} -> {agent_id}
//	add_to_group     POST  {first, last, group_name} -> boolean
//
// Capabilities models the grant as a record with one optional URL per known
// capability, so a missing grant is a nil field rather than a failed map
// lookup. Request bodies are built from immutable records: CreateUserRequest
// is derived from the CheckNameRequest it extends.
//
// Failures fall into two kinds, both fatal for a walk: *TransportError when the
// server cannot be reached or answers with a non-2xx status, and *DecodeError
// when the body is not LLSD of the expected shape.
package regapi
