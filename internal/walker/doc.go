// Package walker runs the registration capability walk.
//
// A walk fetches the capability URLs granted to an account and then visits
// them in a fixed order:
//
//	get_error_codes -> get_last_names -> check_name -> create_user [-> add_to_group]
//
// Each step runs only when every previous step succeeded and its capability is
// present. A missing capability, or a name that is not available, ends the walk
// normally and is reported through the Reporter. Transport and decode failures
// end it with an error.
//
// The walker never retries and never moves backwards. The Result returned by
// Run records the state the walk reached and everything it gathered.
package walker
