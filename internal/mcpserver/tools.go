package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"regctl/internal/regapi"
	"regctl/internal/reporting"
	"regctl/internal/walker"
	"regctl/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegTools exposes the registration API and the capability walk as MCP tools.
type RegTools struct {
	httpClient regapi.HTTPClient
	clientOpts []regapi.Option
	settings   walker.Settings
}

// NewRegTools creates the tool set. Every call builds its own regapi.Client
// from httpClient and opts.
func NewRegTools(httpClient regapi.HTTPClient, settings walker.Settings, opts ...regapi.Option) *RegTools {
	return &RegTools{
		httpClient: httpClient,
		clientOpts: opts,
		settings:   settings,
	}
}

// GetTools returns the tool definitions.
func (rt *RegTools) GetTools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("reg_capabilities",
			mcp.WithDescription("Fetch the registration capability URLs granted to an account"),
			mcp.WithString("first_name", mcp.Required(), mcp.Description("Account first name")),
			mcp.WithString("last_name", mcp.Required(), mcp.Description("Account last name")),
			mcp.WithString("password", mcp.Required(), mcp.Description("Account password")),
			mcp.WithString("bootstrap_url", mcp.Description("Overrides the configured bootstrap URL")),
		),
		mcp.NewTool("reg_error_codes",
			mcp.WithDescription("List the error codes of the registration API"),
			mcp.WithString("url", mcp.Required(), mcp.Description("get_error_codes capability URL")),
		),
		mcp.NewTool("reg_last_names",
			mcp.WithDescription("List the last names available for registration"),
			mcp.WithString("url", mcp.Required(), mcp.Description("get_last_names capability URL")),
		),
		mcp.NewTool("reg_check_name",
			mcp.WithDescription("Check whether a username and last name combination is available"),
			mcp.WithString("url", mcp.Required(), mcp.Description("check_name capability URL")),
			mcp.WithString("username", mcp.Required(), mcp.Description("Candidate username")),
			mcp.WithString("last_name_id", mcp.Required(), mcp.Description("Last name id from reg_last_names")),
		),
		mcp.NewTool("reg_create_user",
			mcp.WithDescription("Create an account and return its agent id"),
			mcp.WithString("url", mcp.Required(), mcp.Description("create_user capability URL")),
			mcp.WithString("username", mcp.Required(), mcp.Description("Username")),
			mcp.WithString("last_name_id", mcp.Required(), mcp.Description("Last name id from reg_last_names")),
			mcp.WithString("email", mcp.Required(), mcp.Description("Email address")),
			mcp.WithString("password", mcp.Description("Account password, defaults to the configured one")),
			mcp.WithString("dob", mcp.Description("Date of birth as YYYY-MM-DD, defaults to the configured one")),
		),
		mcp.NewTool("reg_add_to_group",
			mcp.WithDescription("Add an account to a group"),
			mcp.WithString("url", mcp.Required(), mcp.Description("add_to_group capability URL")),
			mcp.WithString("first", mcp.Required(), mcp.Description("Account first name")),
			mcp.WithString("last", mcp.Required(), mcp.Description("Account last name")),
			mcp.WithString("group_name", mcp.Required(), mcp.Description("Group name")),
		),
		mcp.NewTool("reg_walk",
			mcp.WithDescription("Run the full capability walk and return its transcript"),
			mcp.WithString("first_name", mcp.Required(), mcp.Description("Account first name")),
			mcp.WithString("last_name", mcp.Required(), mcp.Description("Account last name")),
			mcp.WithString("password", mcp.Required(), mcp.Description("Account password")),
			mcp.WithString("group_name", mcp.Description("Group to add the new account to")),
		),
	}
}

// ServerTools pairs every tool with its handler.
func (rt *RegTools) ServerTools() []server.ServerTool {
	handlers := map[string]server.ToolHandlerFunc{
		"reg_capabilities": rt.HandleCapabilities,
		"reg_error_codes":  rt.HandleErrorCodes,
		"reg_last_names":   rt.HandleLastNames,
		"reg_check_name":   rt.HandleCheckName,
		"reg_create_user":  rt.HandleCreateUser,
		"reg_add_to_group": rt.HandleAddToGroup,
		"reg_walk":         rt.HandleWalk,
	}

	var tools []server.ServerTool
	for _, tool := range rt.GetTools() {
		tools = append(tools, server.ServerTool{Tool: tool, Handler: handlers[tool.Name]})
	}
	return tools
}

func (rt *RegTools) client(observer regapi.Observer) *regapi.Client {
	opts := rt.clientOpts
	if observer != nil {
		opts = append(append([]regapi.Option{}, opts...), regapi.WithObserver(observer))
	}
	return regapi.NewClient(rt.httpClient, opts...)
}

// HandleCapabilities handles the reg_capabilities tool call
func (rt *RegTools) HandleCapabilities(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	creds, err := requireCredentials(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bootstrap := req.GetString("bootstrap_url", rt.settings.BootstrapURL)

	caps, err := rt.client(nil).FetchCapabilities(ctx, bootstrap, rt.settings.LoginFormat, creds)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch capabilities: %v", err)), nil
	}
	return jsonResult(caps.Entries())
}

// HandleErrorCodes handles the reg_error_codes tool call
func (rt *RegTools) HandleErrorCodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	capURL, err := requireURL(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	codes, err := rt.client(nil).FetchErrorCodes(ctx, capURL)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch error codes: %v", err)), nil
	}
	out := make([]errorCode, 0, len(codes))
	for _, c := range codes {
		out = append(out, errorCode{Code: c.Code, Description: c.Description})
	}
	return jsonResult(out)
}

// HandleLastNames handles the reg_last_names tool call
func (rt *RegTools) HandleLastNames(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	capURL, err := requireURL(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	names, err := rt.client(nil).FetchLastNames(ctx, capURL)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch last names: %v", err)), nil
	}
	return jsonResult(map[string]string(names))
}

// HandleCheckName handles the reg_check_name tool call
func (rt *RegTools) HandleCheckName(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	capURL, err := requireURL(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	check, err := requireCheckName(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	available, err := rt.client(nil).CheckName(ctx, capURL, check)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to check name: %v", err)), nil
	}
	return jsonResult(map[string]any{
		"username":     check.Username,
		"last_name_id": check.LastNameID,
		"available":    available,
	})
}

// HandleCreateUser handles the reg_create_user tool call
func (rt *RegTools) HandleCreateUser(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	capURL, err := requireURL(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	check, err := requireCheckName(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	email, err := req.RequireString("email")
	if err != nil {
		return mcp.NewToolResultError("email is required"), nil
	}

	create := check.WithAccount(email,
		req.GetString("password", rt.settings.Password),
		req.GetString("dob", rt.settings.DOB)).
		WithOptions(rt.settings.Options)

	account, err := rt.client(nil).CreateUser(ctx, capURL, create)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create user %s: %v", create.Username, err)), nil
	}
	logging.Info("MCPServer", "Created agent %s for %s", account.AgentID, create.Username)
	return jsonResult(map[string]string{"agent_id": account.AgentID.String()})
}

// HandleAddToGroup handles the reg_add_to_group tool call
func (rt *RegTools) HandleAddToGroup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	capURL, err := requireURL(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var group regapi.AddToGroupRequest
	for key, dst := range map[string]*string{"first": &group.First, "last": &group.Last, "group_name": &group.GroupName} {
		if *dst, err = req.RequireString(key); err != nil {
			return mcp.NewToolResultError(key + " is required"), nil
		}
	}

	added, err := rt.client(nil).AddToGroup(ctx, capURL, group)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to add to group: %v", err)), nil
	}
	return jsonResult(map[string]any{"group_name": group.GroupName, "added": added})
}

// HandleWalk handles the reg_walk tool call
func (rt *RegTools) HandleWalk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	creds, err := requireCredentials(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	settings := rt.settings
	settings.GroupName = req.GetString("group_name", settings.GroupName)

	var transcript bytes.Buffer
	reporter := reporting.NewConsoleReporter(&transcript)
	res, err := walker.New(rt.client(reporter), reporter, settings).Run(ctx, creds)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Walk failed at %s: %v\n\n%s", res.State, err, transcript.String())), nil
	}
	return jsonResult(newWalkSummary(res, transcript.String()))
}

type errorCode struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type walkSummary struct {
	State             string            `json:"state"`
	Reason            string            `json:"reason"`
	MissingCapability string            `json:"missing_capability,omitempty"`
	Capabilities      map[string]string `json:"capabilities"`
	ErrorCodes        []errorCode       `json:"error_codes,omitempty"`
	LastNames         map[string]string `json:"last_names,omitempty"`
	Username          string            `json:"username,omitempty"`
	NameAvailable     bool              `json:"name_available"`
	AgentID           string            `json:"agent_id,omitempty"`
	AddedToGroup      bool              `json:"added_to_group,omitempty"`
	Transcript        string            `json:"transcript"`
}

func newWalkSummary(res walker.Result, transcript string) walkSummary {
	s := walkSummary{
		State:             res.State.String(),
		Reason:            res.Reason.String(),
		MissingCapability: res.MissingCapability,
		Capabilities:      res.Capabilities.Entries(),
		LastNames:         res.LastNames,
		NameAvailable:     res.NameAvailable,
		AddedToGroup:      res.AddedToGroup,
		Transcript:        transcript,
	}
	for _, c := range res.ErrorCodes {
		s.ErrorCodes = append(s.ErrorCodes, errorCode{Code: c.Code, Description: c.Description})
	}
	if res.CheckName != nil {
		s.Username = res.CheckName.Username
	}
	if res.Account != nil {
		s.AgentID = res.Account.AgentID.String()
	}
	return s
}

func requireCredentials(req mcp.CallToolRequest) (regapi.Credentials, error) {
	var creds regapi.Credentials
	var err error
	if creds.FirstName, err = req.RequireString("first_name"); err != nil {
		return creds, fmt.Errorf("first_name is required")
	}
	if creds.LastName, err = req.RequireString("last_name"); err != nil {
		return creds, fmt.Errorf("last_name is required")
	}
	if creds.Password, err = req.RequireString("password"); err != nil {
		return creds, fmt.Errorf("password is required")
	}
	return creds, nil
}

func requireCheckName(req mcp.CallToolRequest) (regapi.CheckNameRequest, error) {
	var check regapi.CheckNameRequest
	var err error
	if check.Username, err = req.RequireString("username"); err != nil {
		return check, fmt.Errorf("username is required")
	}
	if check.LastNameID, err = req.RequireString("last_name_id"); err != nil {
		return check, fmt.Errorf("last_name_id is required")
	}
	return check, nil
}

func requireURL(req mcp.CallToolRequest) (*url.URL, error) {
	raw, err := req.RequireString("url")
	if err != nil {
		return nil, fmt.Errorf("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return nil, fmt.Errorf("url %q is not an absolute URL", raw)
	}
	return u, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
