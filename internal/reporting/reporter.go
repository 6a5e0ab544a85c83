package reporting

import (
	"regctl/internal/regapi"
)

// Reporter receives the progress of a capability walk. Implementations also
// observe raw request and response bodies through regapi.Observer.
type Reporter interface {
	regapi.Observer

	// Section announces the start of a walk step.
	Section(title string)
	Capabilities(caps regapi.Capabilities)
	ErrorCodes(codes []regapi.ErrorCode)
	LastNames(names regapi.LastNames)
	NameAvailability(req regapi.CheckNameRequest, available bool)
	NewAgent(account regapi.NewAccount)
	GroupMembership(req regapi.AddToGroupRequest, added bool)
	// NotGranted reports an early, non-error end of the walk.
	NotGranted(capability string, creds regapi.Credentials)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Request(string, string, []byte) {}
func (NopReporter) Response(string, int, []byte) {}
func (NopReporter) Section(string) {}
func (NopReporter) Capabilities(regapi.Capabilities) {}
func (NopReporter) ErrorCodes([]regapi.ErrorCode) {}
func (NopReporter) LastNames(regapi.LastNames) {}
func (NopReporter) NameAvailability(regapi.CheckNameRequest, bool) {}
func (NopReporter) NewAgent(regapi.NewAccount) {}
func (NopReporter) GroupMembership(regapi.AddToGroupRequest, bool) {}
func (NopReporter) NotGranted(string, regapi.Credentials) {}
