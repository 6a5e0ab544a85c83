package walker

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strconv"

	"regctl/internal/config"
	"regctl/internal/regapi"
	"regctl/internal/reporting"
	"regctl/pkg/logging"
)

const subsystem = "Walker"

// API is the subset of regapi.Client used by the walk.
type API interface {
	FetchCapabilities(ctx context.Context, bootstrapURL string, format regapi.LoginFormat, creds regapi.Credentials) (regapi.Capabilities, error)
	FetchErrorCodes(ctx context.Context, capURL *url.URL) ([]regapi.ErrorCode, error)
	FetchLastNames(ctx context.Context, capURL *url.URL) (regapi.LastNames, error)
	CheckName(ctx context.Context, capURL *url.URL, req regapi.CheckNameRequest) (bool, error)
	CreateUser(ctx context.Context, capURL *url.URL, req regapi.CreateUserRequest) (regapi.NewAccount, error)
	AddToGroup(ctx context.Context, capURL *url.URL, req regapi.AddToGroupRequest) (bool, error)
}

// Settings carries everything a walk needs besides the credentials.
type Settings struct {
	BootstrapURL   string
	LoginFormat    regapi.LoginFormat
	UsernamePrefix string
	// SuffixMin and SuffixMax bound the username suffix, [min, max).
	SuffixMin   int
	SuffixMax   int
	EmailDomain string
	Password    string
	DOB         string
	// GroupName enables the add_to_group step when set.
	GroupName string
	Options   regapi.CreateUserOptions
}

// SettingsFromConfig maps the loaded configuration onto walk settings.
func SettingsFromConfig(cfg config.RegctlConfig) Settings {
	reg := cfg.Registration
	s := Settings{
		BootstrapURL:   cfg.Bootstrap.URL,
		LoginFormat:    regapi.LoginForm,
		UsernamePrefix: reg.UsernamePrefix,
		SuffixMin:      reg.SuffixMin,
		SuffixMax:      reg.SuffixMax,
		EmailDomain:    reg.EmailDomain,
		Password:       reg.Password,
		DOB:            reg.DOB,
		GroupName:      reg.GroupName,
		Options: regapi.CreateUserOptions{
			LimitedToEstate: reg.LimitedToEstate,
			StartRegionName: reg.StartRegionName,
			StartLocal:      toVector(reg.StartPosition),
			StartLookAt:     toVector(reg.StartLookAt),
		},
	}
	if cfg.Bootstrap.Format == config.BootstrapFormatLLSD {
		s.LoginFormat = regapi.LoginLLSD
	}
	return s
}

func toVector(v *config.Vector3) *regapi.Vector {
	if v == nil {
		return nil
	}
	return &regapi.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

// Result describes how far a walk got and what it gathered on the way.
type Result struct {
	State  State
	Reason StopReason
	// MissingCapability names the capability that ended the walk, if any.
	MissingCapability string

	Capabilities  regapi.Capabilities
	ErrorCodes    []regapi.ErrorCode
	LastNames     regapi.LastNames
	CheckName     *regapi.CheckNameRequest
	NameAvailable bool
	CreateUser    *regapi.CreateUserRequest
	Account       *regapi.NewAccount
	AddedToGroup  bool
}

// Walker runs capability walks.
type Walker struct {
	api      API
	reporter reporting.Reporter
	settings Settings
	intn     func(n int) int
}

// Option configures a Walker.
type Option func(*Walker)

// WithRandom replaces the source of username suffixes. intn must return a
// value in [0, n).
func WithRandom(intn func(n int) int) Option {
	return func(w *Walker) {
		w.intn = intn
	}
}

// New creates a Walker. A nil reporter discards all output.
func New(api API, reporter reporting.Reporter, settings Settings, opts ...Option) *Walker {
	if reporter == nil {
		reporter = reporting.NopReporter{}
	}
	w := &Walker{
		api:      api,
		reporter: reporter,
		settings: settings,
		intn:     rand.IntN,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Username draws a candidate username: the prefix followed by a decimal
// integer in [SuffixMin, SuffixMax).
func (w *Walker) Username() string {
	span := w.settings.SuffixMax - w.settings.SuffixMin
	suffix := w.settings.SuffixMin
	if span > 0 {
		suffix += w.intn(span)
	}
	return w.settings.UsernamePrefix + strconv.Itoa(suffix)
}

// Run executes one walk for creds. The returned Result is valid even when the
// error is not nil; it then describes the state that failed.
func (w *Walker) Run(ctx context.Context, creds regapi.Credentials) (Result, error) {
	res := Result{State: StateFetchCaps}

	w.reporter.Section("Getting capabilities")
	caps, err := w.api.FetchCapabilities(ctx, w.settings.BootstrapURL, w.settings.LoginFormat, creds)
	if err != nil {
		return res, fmt.Errorf("fetching capabilities for %s %s: %w", creds.FirstName, creds.LastName, err)
	}
	res.Capabilities = caps
	w.reporter.Capabilities(caps)

	res.State = StateErrorCodes
	if caps.GetErrorCodes == nil {
		return w.notGranted(res, regapi.CapGetErrorCodes, creds), nil
	}
	w.reporter.Section("Get Error Codes")
	codes, err := w.api.FetchErrorCodes(ctx, caps.GetErrorCodes)
	if err != nil {
		return res, fmt.Errorf("fetching error codes: %w", err)
	}
	res.ErrorCodes = codes
	w.reporter.ErrorCodes(codes)

	res.State = StateLastNames
	if caps.GetLastNames == nil {
		return w.notGranted(res, regapi.CapGetLastNames, creds), nil
	}
	w.reporter.Section("Get Last Names")
	names, err := w.api.FetchLastNames(ctx, caps.GetLastNames)
	if err != nil {
		return res, fmt.Errorf("fetching last names: %w", err)
	}
	res.LastNames = names
	w.reporter.LastNames(names)

	res.State = StateCheckName
	if caps.CheckName == nil {
		return w.notGranted(res, regapi.CapCheckName, creds), nil
	}
	lastNameID, ok := names.First()
	if !ok {
		return res, regapi.ErrNoLastNames
	}
	w.reporter.Section("Check Name")
	check := regapi.CheckNameRequest{Username: w.Username(), LastNameID: lastNameID}
	res.CheckName = &check
	available, err := w.api.CheckName(ctx, caps.CheckName, check)
	if err != nil {
		return res, fmt.Errorf("checking name %s: %w", check.Username, err)
	}
	res.NameAvailable = available
	w.reporter.NameAvailability(check, available)

	res.State = StateCreateUser
	if !available {
		logging.Info(subsystem, "Name %s is taken", check.Username)
		res.Reason = StopNameUnavailable
		w.reporter.NotGranted(regapi.CapCreateUser, creds)
		return res, nil
	}
	if caps.CreateUser == nil {
		return w.notGranted(res, regapi.CapCreateUser, creds), nil
	}
	w.reporter.Section("Create User")
	create := check.
		WithAccount(check.Username+"@"+w.settings.EmailDomain, w.settings.Password, w.settings.DOB).
		WithOptions(w.settings.Options)
	res.CreateUser = &create
	account, err := w.api.CreateUser(ctx, caps.CreateUser, create)
	if err != nil {
		return res, fmt.Errorf("creating user %s: %w", create.Username, err)
	}
	res.Account = &account
	w.reporter.NewAgent(account)
	logging.Info(subsystem, "Created agent %s for %s", account.AgentID, create.Username)

	if w.settings.GroupName != "" {
		res.State = StateAddToGroup
		if caps.AddToGroup == nil {
			return w.notGranted(res, regapi.CapAddToGroup, creds), nil
		}
		w.reporter.Section("Add To Group")
		req := regapi.AddToGroupRequest{
			First:     create.Username,
			Last:      names[lastNameID],
			GroupName: w.settings.GroupName,
		}
		added, err := w.api.AddToGroup(ctx, caps.AddToGroup, req)
		if err != nil {
			return res, fmt.Errorf("adding %s to group %s: %w", req.First, req.GroupName, err)
		}
		res.AddedToGroup = added
		w.reporter.GroupMembership(req, added)
	}

	res.State = StateDone
	res.Reason = StopCompleted
	return res, nil
}

func (w *Walker) notGranted(res Result, capability string, creds regapi.Credentials) Result {
	logging.Debug(subsystem, "Stopping at %s: %s not granted", res.State, capability)
	res.Reason = StopMissingCapability
	res.MissingCapability = capability
	w.reporter.NotGranted(capability, creds)
	return res
}
