package reporting

import (
	"fmt"
	"io"
	"strings"

	"regctl/internal/color"
	"regctl/internal/regapi"
	"regctl/pkg/logging"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
)

const defaultMaxCellWidth = 72

// ConsoleReporter is an implementation of Reporter that echoes the walk to a
// writer, normally os.Stdout.
type ConsoleReporter struct {
	out          io.Writer
	maxCellWidth int
	sections     int
}

// NewConsoleReporter creates a new ConsoleReporter writing to out.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{
		out:          out,
		maxCellWidth: defaultMaxCellWidth,
	}
}

// WithMaxCellWidth limits the display width of table cells. Zero disables
// truncation.
func (c *ConsoleReporter) WithMaxCellWidth(width int) *ConsoleReporter {
	c.maxCellWidth = width
	return c
}

func (c *ConsoleReporter) Section(title string) {
	if c.sections > 0 {
		fmt.Fprint(c.out, "\n\n")
	}
	c.sections++
	fmt.Fprintln(c.out, color.SectionStyle.Render(color.Banner(title)))
}

func (c *ConsoleReporter) Request(method, url string, body []byte) {
	if len(body) == 0 {
		return
	}
	fmt.Fprintln(c.out, color.LabelStyle.Render("posted "+bodyKind(body)+":"))
	fmt.Fprintln(c.out, string(body))
}

func (c *ConsoleReporter) Response(url string, status int, body []byte) {
	fmt.Fprintln(c.out, color.LabelStyle.Render("xml response:"))
	fmt.Fprintln(c.out, strings.TrimRight(string(body), "\r\n"))
	if status < 200 || status > 299 {
		logging.Warn("Reporter", "%s answered with status %d", url, status)
	}
}

func (c *ConsoleReporter) Capabilities(caps regapi.Capabilities) {
	entries := caps.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(c.out, color.WarnStyle.Render("No capabilities granted"))
		return
	}
	t := c.newTable("CAPABILITY", "URL")
	for _, name := range caps.Names() {
		// URLs are never truncated, they are meant to be copied.
		t.AppendRow(table.Row{name, entries[name]})
	}
	t.Render()
}

func (c *ConsoleReporter) ErrorCodes(codes []regapi.ErrorCode) {
	if len(codes) == 0 {
		fmt.Fprintln(c.out, color.WarnStyle.Render("No error codes"))
		return
	}
	t := c.newTable("CODE", "DESCRIPTION")
	for _, code := range codes {
		t.AppendRow(table.Row{code.Code, c.truncate(code.Description)})
	}
	t.Render()
}

func (c *ConsoleReporter) LastNames(names regapi.LastNames) {
	if len(names) == 0 {
		fmt.Fprintln(c.out, color.WarnStyle.Render("No last names"))
		return
	}
	t := c.newTable("ID", "LAST NAME")
	for _, id := range names.IDs() {
		t.AppendRow(table.Row{id, c.truncate(names[id])})
	}
	t.Render()
}

func (c *ConsoleReporter) NameAvailability(req regapi.CheckNameRequest, available bool) {
	style := color.WarnStyle
	if available {
		style = color.SuccessStyle
	}
	fmt.Fprintf(c.out, "Result (is name available?): %s\n", style.Render(fmt.Sprintf("%t", available)))
	logging.Debug("Reporter", "check_name %s (last name id %s): %t", req.Username, req.LastNameID, available)
}

func (c *ConsoleReporter) NewAgent(account regapi.NewAccount) {
	fmt.Fprintf(c.out, "New agent id: %s\n", color.SuccessStyle.Render(account.AgentID.String()))
}

func (c *ConsoleReporter) GroupMembership(req regapi.AddToGroupRequest, added bool) {
	if added {
		fmt.Fprintf(c.out, "Added %s %s to group %s\n", req.First, req.Last, color.SuccessStyle.Render(req.GroupName))
		return
	}
	fmt.Fprintf(c.out, "%s\n", color.WarnStyle.Render(fmt.Sprintf("Could not add %s %s to group %s", req.First, req.Last, req.GroupName)))
}

func (c *ConsoleReporter) NotGranted(capability string, creds regapi.Credentials) {
	msg := fmt.Sprintf("%s capability not granted to %s %s. Now Exiting Prematurely ...", capability, creds.FirstName, creds.LastName)
	fmt.Fprintln(c.out, color.WarnStyle.Render(msg))
}

func (c *ConsoleReporter) newTable(headers ...string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(c.out)
	t.SetStyle(table.StyleRounded)
	row := make(table.Row, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	t.AppendHeader(row)
	return t
}

func (c *ConsoleReporter) truncate(s string) string {
	if c.maxCellWidth <= 0 {
		return s
	}
	return runewidth.Truncate(s, c.maxCellWidth, "…")
}

func bodyKind(body []byte) string {
	if strings.HasPrefix(strings.TrimSpace(string(body)), "<") {
		return "xml"
	}
	return "form"
}
