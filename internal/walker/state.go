package walker

// State is a step of the capability walk. States only move forward.
type State int

const (
	StateFetchCaps State = iota
	StateErrorCodes
	StateLastNames
	StateCheckName
	StateCreateUser
	StateAddToGroup
	StateDone
)

func (s State) String() string {
	switch s {
	case StateFetchCaps:
		return "FetchCaps"
	case StateErrorCodes:
		return "ErrorCodes"
	case StateLastNames:
		return "LastNames"
	case StateCheckName:
		return "CheckName"
	case StateCreateUser:
		return "CreateUser"
	case StateAddToGroup:
		return "AddToGroup"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// StopReason tells why a walk ended without an error.
type StopReason int

const (
	StopCompleted StopReason = iota
	// StopMissingCapability means a required capability was not granted.
	StopMissingCapability
	// StopNameUnavailable means check_name answered with a falsy value.
	StopNameUnavailable
)

func (r StopReason) String() string {
	switch r {
	case StopCompleted:
		return "completed"
	case StopMissingCapability:
		return "missing capability"
	case StopNameUnavailable:
		return "name unavailable"
	default:
		return "unknown"
	}
}
