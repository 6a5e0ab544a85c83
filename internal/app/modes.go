package app

import (
	"context"
	"io"

	"regctl/internal/mcpserver"
	"regctl/internal/regapi"
	"regctl/internal/reporting"
	"regctl/internal/walker"
	"regctl/pkg/logging"
)

// runWalk executes the capability walk with console reporting
func runWalk(ctx context.Context, out io.Writer, services *Services, creds regapi.Credentials) (walker.Result, error) {
	reporter := reporting.NewConsoleReporter(out)
	w := walker.New(services.NewClient(reporter), reporter, services.Settings)

	logging.Debug("CLI", "Walking %s for %s %s", services.Settings.BootstrapURL, creds.FirstName, creds.LastName)
	res, err := w.Run(ctx, creds)
	if err != nil {
		logging.Error("CLI", err, "Walk failed at %s", res.State)
		return res, err
	}
	logging.Debug("CLI", "Walk ended at %s: %s", res.State, res.Reason)
	return res, nil
}

// serveMCP exposes the walk as MCP tools over stdio
func serveMCP(ctx context.Context, version string, services *Services) error {
	tools := mcpserver.NewRegTools(services.HTTPClient, services.Settings, services.ClientOptions...)
	return mcpserver.ServeStdio(ctx, mcpserver.NewServer(version, tools))
}
