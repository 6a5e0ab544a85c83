package walker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"testing"

	"regctl/internal/config"
	"regctl/internal/llsd"
	"regctl/internal/regapi"
	"regctl/internal/reporting"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var creds = regapi.Credentials{FirstName: "registration", LastName: "mackay", Password: "1234"}

func capURL(name string) *url.URL {
	return &url.URL{Scheme: "http", Host: "grid.example", Path: "/cap/" + name}
}

func allCaps() regapi.Capabilities {
	return regapi.Capabilities{
		GetErrorCodes: capURL("codes"),
		GetLastNames:  capURL("names"),
		CheckName:     capURL("check"),
		CreateUser:    capURL("create"),
		AddToGroup:    capURL("group"),
	}
}

// fakeAPI records every call and answers from its fields.
type fakeAPI struct {
	caps      regapi.Capabilities
	codes     []regapi.ErrorCode
	names     regapi.LastNames
	available bool
	account   regapi.NewAccount
	added     bool
	failOn    string

	calls  []string
	checks []regapi.CheckNameRequest
	create []regapi.CreateUserRequest
	groups []regapi.AddToGroupRequest
}

func (f *fakeAPI) fail(call string) error {
	f.calls = append(f.calls, call)
	if f.failOn == call {
		return &regapi.TransportError{URL: "http://grid.example/" + call, StatusCode: http.StatusInternalServerError}
	}
	return nil
}

func (f *fakeAPI) FetchCapabilities(_ context.Context, _ string, _ regapi.LoginFormat, _ regapi.Credentials) (regapi.Capabilities, error) {
	return f.caps, f.fail("caps")
}

func (f *fakeAPI) FetchErrorCodes(_ context.Context, _ *url.URL) ([]regapi.ErrorCode, error) {
	return f.codes, f.fail(regapi.CapGetErrorCodes)
}

func (f *fakeAPI) FetchLastNames(_ context.Context, _ *url.URL) (regapi.LastNames, error) {
	return f.names, f.fail(regapi.CapGetLastNames)
}

func (f *fakeAPI) CheckName(_ context.Context, _ *url.URL, req regapi.CheckNameRequest) (bool, error) {
	f.checks = append(f.checks, req)
	return f.available, f.fail(regapi.CapCheckName)
}

func (f *fakeAPI) CreateUser(_ context.Context, _ *url.URL, req regapi.CreateUserRequest) (regapi.NewAccount, error) {
	f.create = append(f.create, req)
	return f.account, f.fail(regapi.CapCreateUser)
}

func (f *fakeAPI) AddToGroup(_ context.Context, _ *url.URL, req regapi.AddToGroupRequest) (bool, error) {
	f.groups = append(f.groups, req)
	return f.added, f.fail(regapi.CapAddToGroup)
}

func defaultSettings() Settings {
	return SettingsFromConfig(config.GetDefaultConfig())
}

func TestRun_GatesEachCapability(t *testing.T) {
	tests := []struct {
		name      string
		drop      func(*regapi.Capabilities)
		missing   string
		wantState State
		wantCalls []string
	}{
		{
			name:      "no get_error_codes",
			drop:      func(c *regapi.Capabilities) { c.GetErrorCodes = nil },
			missing:   regapi.CapGetErrorCodes,
			wantState: StateErrorCodes,
			wantCalls: []string{"caps"},
		},
		{
			name:      "no get_last_names",
			drop:      func(c *regapi.Capabilities) { c.GetLastNames = nil },
			missing:   regapi.CapGetLastNames,
			wantState: StateLastNames,
			wantCalls: []string{"caps", regapi.CapGetErrorCodes},
		},
		{
			name:      "no check_name",
			drop:      func(c *regapi.Capabilities) { c.CheckName = nil },
			missing:   regapi.CapCheckName,
			wantState: StateCheckName,
			wantCalls: []string{"caps", regapi.CapGetErrorCodes, regapi.CapGetLastNames},
		},
		{
			name:      "no create_user",
			drop:      func(c *regapi.Capabilities) { c.CreateUser = nil },
			missing:   regapi.CapCreateUser,
			wantState: StateCreateUser,
			wantCalls: []string{"caps", regapi.CapGetErrorCodes, regapi.CapGetLastNames, regapi.CapCheckName},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := allCaps()
			tt.drop(&caps)
			api := &fakeAPI{caps: caps, names: regapi.LastNames{"7": "Resident"}, available: true}

			var out bytes.Buffer
			res, err := New(api, reporting.NewConsoleReporter(&out), defaultSettings()).Run(context.Background(), creds)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCalls, api.calls)
			assert.Equal(t, tt.wantState, res.State)
			assert.Equal(t, StopMissingCapability, res.Reason)
			assert.Equal(t, tt.missing, res.MissingCapability)
			assert.Nil(t, res.Account)
			assert.Contains(t, out.String(), tt.missing+" capability not granted to registration mackay. Now Exiting Prematurely ...")
		})
	}
}

func TestRun_CreateUserGatedIndependently(t *testing.T) {
	tests := []struct {
		name       string
		available  bool
		createCap  bool
		wantCreate bool
		wantReason StopReason
	}{
		{"available and granted", true, true, true, StopCompleted},
		{"available not granted", true, false, false, StopMissingCapability},
		{"taken and granted", false, true, false, StopNameUnavailable},
		{"taken not granted", false, false, false, StopNameUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := allCaps()
			if !tt.createCap {
				caps.CreateUser = nil
			}
			api := &fakeAPI{caps: caps, names: regapi.LastNames{"7": "Resident"}, available: tt.available}

			res, err := New(api, nil, defaultSettings()).Run(context.Background(), creds)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCreate, len(api.create) == 1)
			assert.Equal(t, tt.wantReason, res.Reason)
			if !tt.wantCreate {
				assert.Nil(t, res.CreateUser)
			}
		})
	}
}

func TestRun_CreateRequestExtendsCheckRequest(t *testing.T) {
	api := &fakeAPI{
		caps:      allCaps(),
		names:     regapi.LastNames{"7": "Resident"},
		available: true,
		account:   regapi.NewAccount{AgentID: uuid.New()},
	}

	res, err := New(api, nil, defaultSettings(), WithRandom(func(int) int { return 42 })).Run(context.Background(), creds)
	require.NoError(t, err)
	require.Len(t, api.checks, 1)
	require.Len(t, api.create, 1)

	check := api.checks[0]
	assert.Equal(t, regapi.CheckNameRequest{Username: "benny142", LastNameID: "7"}, check)

	create := api.create[0]
	assert.Equal(t, check, create.CheckNameRequest)
	assert.Equal(t, "benny142@ben.com", create.Email)
	assert.Equal(t, "123123abc", create.Password)
	assert.Equal(t, "1980-01-01", create.DOB)
	assert.Len(t, create.Fields(), len(check.Fields())+3)

	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, StopCompleted, res.Reason)
	assert.Equal(t, api.account, *res.Account)
	assert.Empty(t, api.groups, "no group configured")
}

func TestUsername_Range(t *testing.T) {
	pattern := regexp.MustCompile(`^benny(\d+)$`)
	w := New(&fakeAPI{}, nil, defaultSettings())

	for i := 0; i < 2000; i++ {
		name := w.Username()
		m := pattern.FindStringSubmatch(name)
		require.NotNil(t, m, name)
		n, err := strconv.Atoi(m[1])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100)
		assert.Less(t, n, 10000)
	}

	low := New(&fakeAPI{}, nil, defaultSettings(), WithRandom(func(int) int { return 0 }))
	assert.Equal(t, "benny100", low.Username())
	high := New(&fakeAPI{}, nil, defaultSettings(), WithRandom(func(n int) int { return n - 1 }))
	assert.Equal(t, "benny9999", high.Username())
}

func TestRun_Errors(t *testing.T) {
	t.Run("transport failure stops the walk", func(t *testing.T) {
		api := &fakeAPI{caps: allCaps(), names: regapi.LastNames{"7": "Resident"}, failOn: regapi.CapGetLastNames}

		res, err := New(api, nil, defaultSettings()).Run(context.Background(), creds)
		var transportErr *regapi.TransportError
		require.ErrorAs(t, err, &transportErr)
		assert.Equal(t, StateLastNames, res.State)
		assert.Empty(t, api.checks)
	})

	t.Run("no last names", func(t *testing.T) {
		api := &fakeAPI{caps: allCaps(), names: regapi.LastNames{}}

		_, err := New(api, nil, defaultSettings()).Run(context.Background(), creds)
		assert.True(t, errors.Is(err, regapi.ErrNoLastNames))
		assert.Empty(t, api.checks)
	})
}

func TestRun_AddToGroup(t *testing.T) {
	settings := defaultSettings()
	settings.GroupName = "Builders"

	t.Run("granted", func(t *testing.T) {
		api := &fakeAPI{caps: allCaps(), names: regapi.LastNames{"7": "Resident"}, available: true, added: true}

		res, err := New(api, nil, settings, WithRandom(func(int) int { return 0 })).Run(context.Background(), creds)
		require.NoError(t, err)
		require.Len(t, api.groups, 1)
		assert.Equal(t, regapi.AddToGroupRequest{First: "benny100", Last: "Resident", GroupName: "Builders"}, api.groups[0])
		assert.True(t, res.AddedToGroup)
		assert.Equal(t, StateDone, res.State)
	})

	t.Run("not granted", func(t *testing.T) {
		caps := allCaps()
		caps.AddToGroup = nil
		api := &fakeAPI{caps: caps, names: regapi.LastNames{"7": "Resident"}, available: true}

		res, err := New(api, nil, settings).Run(context.Background(), creds)
		require.NoError(t, err)
		assert.Len(t, api.create, 1, "the account is still created")
		assert.Equal(t, StateAddToGroup, res.State)
		assert.Equal(t, regapi.CapAddToGroup, res.MissingCapability)
	})
}

// gridServer serves a registration API over HTTP. caps lists the granted
// capability names; available is the check_name answer.
type gridServer struct {
	*httptest.Server
	posted map[string]map[string]any
}

func newGridServer(t *testing.T, caps []string, available bool) *gridServer {
	t.Helper()
	g := &gridServer{posted: map[string]map[string]any{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/get_reg_capabilities", func(w http.ResponseWriter, r *http.Request) {
		m := map[string]any{}
		for _, name := range caps {
			m[name] = g.URL + "/cap/" + name
		}
		body, err := llsd.Marshal(m)
		assert.NoError(t, err)
		w.Write(body)
	})
	mux.HandleFunc("/cap/get_error_codes", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<llsd><array><array><integer>1</integer><string>Missing parameter</string></array></array></llsd>`)
	})
	mux.HandleFunc("/cap/get_last_names", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<llsd><map><key>7</key><string>Resident</string></map></llsd>`)
	})
	record := func(name string, reply string) {
		mux.HandleFunc("/cap/"+name, func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			v, err := llsd.Unmarshal(body)
			assert.NoError(t, err)
			m, _ := v.(map[string]any)
			g.posted[name] = m
			io.WriteString(w, reply)
		})
	}
	record(regapi.CapCheckName, `<llsd><boolean>`+strconv.FormatBool(available)+`</boolean></llsd>`)
	record(regapi.CapCreateUser, `<llsd><map><key>agent_id</key><uuid>6f6c6e00-1111-2222-3333-444455556666</uuid></map></llsd>`)

	g.Server = httptest.NewServer(mux)
	t.Cleanup(g.Close)
	return g
}

func runAgainst(t *testing.T, g *gridServer) (Result, string) {
	t.Helper()
	var out bytes.Buffer
	reporter := reporting.NewConsoleReporter(&out)
	client := regapi.NewClient(g.Client(), regapi.WithObserver(reporter))

	settings := defaultSettings()
	settings.BootstrapURL = g.URL + "/get_reg_capabilities"

	res, err := New(client, reporter, settings).Run(context.Background(), creds)
	require.NoError(t, err)
	return res, out.String()
}

func TestScenarioA_OnlyErrorCodes(t *testing.T) {
	g := newGridServer(t, []string{regapi.CapGetErrorCodes}, true)

	res, out := runAgainst(t, g)

	assert.Equal(t, []regapi.ErrorCode{{Code: "1", Description: "Missing parameter"}}, res.ErrorCodes)
	assert.Contains(t, out, "Missing parameter")
	assert.Contains(t, out, "get_last_names capability not granted to registration mackay. Now Exiting Prematurely ...")
	assert.Nil(t, res.LastNames)
	assert.Empty(t, g.posted)
}

func TestScenarioB_CreatesUser(t *testing.T) {
	g := newGridServer(t, []string{
		regapi.CapGetErrorCodes, regapi.CapGetLastNames, regapi.CapCheckName, regapi.CapCreateUser,
	}, true)

	res, out := runAgainst(t, g)

	created := g.posted[regapi.CapCreateUser]
	require.NotNil(t, created)
	assert.Equal(t, "7", created["last_name_id"])
	assert.Regexp(t, `^benny\d+$`, created["username"])
	assert.Equal(t, created["username"].(string)+"@ben.com", created["email"])
	assert.Equal(t, g.posted[regapi.CapCheckName]["username"], created["username"])

	require.NotNil(t, res.Account)
	assert.Equal(t, "6f6c6e00-1111-2222-3333-444455556666", res.Account.AgentID.String())
	assert.Contains(t, out, "Result (is name available?): true")
	assert.Contains(t, out, "New agent id: 6f6c6e00-1111-2222-3333-444455556666")
}

func TestScenarioC_NameTaken(t *testing.T) {
	g := newGridServer(t, []string{
		regapi.CapGetErrorCodes, regapi.CapGetLastNames, regapi.CapCheckName, regapi.CapCreateUser,
	}, false)

	res, out := runAgainst(t, g)

	assert.NotNil(t, g.posted[regapi.CapCheckName])
	assert.Nil(t, g.posted[regapi.CapCreateUser])
	assert.Equal(t, StopNameUnavailable, res.Reason)
	assert.Contains(t, out, "Result (is name available?): false")
	assert.Contains(t, out, "create_user capability not granted to registration mackay. Now Exiting Prematurely ...")
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.GetDefaultConfig()
	estate := 2
	cfg.Bootstrap.Format = config.BootstrapFormatLLSD
	cfg.Registration.LimitedToEstate = &estate
	cfg.Registration.StartPosition = &config.Vector3{X: 1, Y: 2, Z: 3}

	s := SettingsFromConfig(cfg)
	assert.Equal(t, regapi.LoginLLSD, s.LoginFormat)
	assert.Equal(t, config.DefaultBootstrapURL, s.BootstrapURL)
	assert.Equal(t, &estate, s.Options.LimitedToEstate)
	assert.Equal(t, &regapi.Vector{X: 1, Y: 2, Z: 3}, s.Options.StartLocal)
	assert.Nil(t, s.Options.StartLookAt)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "CheckName", StateCheckName.String())
	assert.Equal(t, "Done", StateDone.String())
	assert.Equal(t, "name unavailable", StopNameUnavailable.String())
}
