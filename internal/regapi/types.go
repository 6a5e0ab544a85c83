package regapi

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"regctl/internal/llsd"

	"github.com/google/uuid"
)

// Capability names as granted by the bootstrap endpoint.
const (
	CapGetErrorCodes = "get_error_codes"
	CapGetLastNames  = "get_last_names"
	CapCheckName     = "check_name"
	CapCreateUser    = "create_user"
	CapAddToGroup    = "add_to_group"
)

// Credentials identify the account asking for capabilities.
type Credentials struct {
	FirstName string
	LastName  string
	Password  string
}

// Capabilities holds the capability URLs granted to an account. A nil field
// means the capability was not granted.
type Capabilities struct {
	GetErrorCodes *url.URL
	GetLastNames  *url.URL
	CheckName     *url.URL
	CreateUser    *url.URL
	AddToGroup    *url.URL

	// Extra keeps entries with unrecognized names, for display only.
	Extra map[string]string
}

func (c Capabilities) known() map[string]*url.URL {
	return map[string]*url.URL{
		CapGetErrorCodes: c.GetErrorCodes,
		CapGetLastNames:  c.GetLastNames,
		CapCheckName:     c.CheckName,
		CapCreateUser:    c.CreateUser,
		CapAddToGroup:    c.AddToGroup,
	}
}

// Entries returns every granted entry, known and extra, as name -> URL.
func (c Capabilities) Entries() map[string]string {
	entries := make(map[string]string, len(c.Extra)+5)
	for name, u := range c.known() {
		if u != nil {
			entries[name] = u.String()
		}
	}
	for name, v := range c.Extra {
		entries[name] = v
	}
	return entries
}

// Names returns the granted capability names in sorted order.
func (c Capabilities) Names() []string {
	entries := c.Entries()
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseCapabilities converts a decoded bootstrap response into Capabilities.
func ParseCapabilities(v any) (Capabilities, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Capabilities{}, fmt.Errorf("expected a map of capabilities, got %T", v)
	}

	var caps Capabilities
	fields := map[string]**url.URL{
		CapGetErrorCodes: &caps.GetErrorCodes,
		CapGetLastNames:  &caps.GetLastNames,
		CapCheckName:     &caps.CheckName,
		CapCreateUser:    &caps.CreateUser,
		CapAddToGroup:    &caps.AddToGroup,
	}

	for name, raw := range m {
		field, known := fields[name]
		if !known {
			if caps.Extra == nil {
				caps.Extra = make(map[string]string)
			}
			caps.Extra[name] = llsd.Format(raw)
			continue
		}

		var u *url.URL
		switch val := raw.(type) {
		case *url.URL:
			u = val
		case string:
			parsed, err := url.Parse(val)
			if err != nil {
				return Capabilities{}, fmt.Errorf("capability %s: invalid url %q: %w", name, val, err)
			}
			u = parsed
		default:
			return Capabilities{}, fmt.Errorf("capability %s: expected a url, got %T", name, raw)
		}
		// An empty value is how the server leaves a capability ungranted.
		if u == nil || u.String() == "" {
			continue
		}
		if !u.IsAbs() {
			return Capabilities{}, fmt.Errorf("capability %s: url %q is not absolute", name, u.String())
		}
		*field = u
	}
	return caps, nil
}

// ErrorCode is one entry of the get_error_codes list.
type ErrorCode struct {
	Code        string
	Description string
}

// ParseErrorCodes converts a decoded array of [code, description] pairs.
func ParseErrorCodes(v any) ([]ErrorCode, error) {
	entries, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected an array of error codes, got %T", v)
	}
	codes := make([]ErrorCode, 0, len(entries))
	for i, entry := range entries {
		pair, ok := entry.([]any)
		if !ok || len(pair) < 2 {
			return nil, fmt.Errorf("error code entry %d: expected [code, description]", i)
		}
		codes = append(codes, ErrorCode{
			Code:        llsd.Format(pair[0]),
			Description: llsd.Format(pair[1]),
		})
	}
	return codes, nil
}

// LastNames maps last name ids to display names.
type LastNames map[string]string

// ParseLastNames converts a decoded get_last_names map.
func ParseLastNames(v any) (LastNames, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a map of last names, got %T", v)
	}
	names := make(LastNames, len(m))
	for id, name := range m {
		names[id] = llsd.Format(name)
	}
	return names, nil
}

// IDs returns the ids in ascending order, numerically when both ids are
// integers.
func (n LastNames) IDs() []string {
	ids := make([]string, 0, len(n))
	for id := range n {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return ids[i] < ids[j]
	})
	return ids
}

// First returns the first id in IDs order.
func (n LastNames) First() (string, bool) {
	ids := n.IDs()
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

// CheckNameRequest asks whether a username is free under a last name.
type CheckNameRequest struct {
	Username   string
	LastNameID string
}

// Fields returns the LLSD map posted to check_name.
func (r CheckNameRequest) Fields() map[string]any {
	return map[string]any{
		"username":     r.Username,
		"last_name_id": r.LastNameID,
	}
}

// WithAccount extends the check with the account fields create_user needs.
func (r CheckNameRequest) WithAccount(email, password, dob string) CreateUserRequest {
	return CreateUserRequest{
		CheckNameRequest: r,
		Email:            email,
		Password:         password,
		DOB:              dob,
	}
}

// Vector is a region-local position or look-at direction.
type Vector struct {
	X, Y, Z float64
}

// CreateUserOptions are optional create_user fields; unset ones are not sent.
type CreateUserOptions struct {
	LimitedToEstate *int
	StartRegionName string
	StartLocal      *Vector
	StartLookAt     *Vector
}

// CreateUserRequest is a CheckNameRequest plus the account fields.
type CreateUserRequest struct {
	CheckNameRequest
	Email    string
	Password string
	DOB      string
	Options  CreateUserOptions
}

// WithOptions returns a copy of r carrying opts.
func (r CreateUserRequest) WithOptions(opts CreateUserOptions) CreateUserRequest {
	r.Options = opts
	return r
}

// Fields returns the LLSD map posted to create_user.
func (r CreateUserRequest) Fields() map[string]any {
	fields := r.CheckNameRequest.Fields()
	fields["email"] = r.Email
	fields["password"] = r.Password
	fields["dob"] = r.DOB

	opts := r.Options
	if opts.LimitedToEstate != nil {
		fields["limited_to_estate"] = *opts.LimitedToEstate
	}
	if opts.StartRegionName != "" {
		fields["start_region_name"] = opts.StartRegionName
	}
	if opts.StartLocal != nil {
		fields["start_local_x"] = opts.StartLocal.X
		fields["start_local_y"] = opts.StartLocal.Y
		fields["start_local_z"] = opts.StartLocal.Z
	}
	if opts.StartLookAt != nil {
		fields["start_look_at_x"] = opts.StartLookAt.X
		fields["start_look_at_y"] = opts.StartLookAt.Y
		fields["start_look_at_z"] = opts.StartLookAt.Z
	}
	return fields
}

// NewAccount is the result of a successful create_user call.
type NewAccount struct {
	AgentID uuid.UUID
}

// ParseNewAccount extracts agent_id from a decoded create_user response.
func ParseNewAccount(v any) (NewAccount, error) {
	switch val := v.(type) {
	case bool:
		if !val {
			return NewAccount{}, ErrRejected
		}
	case map[string]any:
		raw, ok := val["agent_id"]
		if !ok {
			return NewAccount{}, fmt.Errorf("response has no agent_id")
		}
		switch id := raw.(type) {
		case uuid.UUID:
			return NewAccount{AgentID: id}, nil
		case string:
			parsed, err := uuid.Parse(id)
			if err != nil {
				return NewAccount{}, fmt.Errorf("agent_id %q is not a uuid", id)
			}
			return NewAccount{AgentID: parsed}, nil
		}
		return NewAccount{}, fmt.Errorf("agent_id has unexpected type %T", raw)
	}
	return NewAccount{}, fmt.Errorf("expected a map with agent_id, got %T", v)
}

// AddToGroupRequest adds an existing account to a group by name.
type AddToGroupRequest struct {
	First     string
	Last      string
	GroupName string
}

// Fields returns the LLSD map posted to add_to_group.
func (r AddToGroupRequest) Fields() map[string]any {
	return map[string]any{
		"first":      r.First,
		"last":       r.Last,
		"group_name": r.GroupName,
	}
}
