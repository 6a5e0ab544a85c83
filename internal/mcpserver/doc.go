// Package mcpserver exposes the registration API as MCP tools.
//
// Each registration API call is one tool (reg_capabilities, reg_error_codes,
// reg_last_names, reg_check_name, reg_create_user, reg_add_to_group) and
// reg_walk runs the complete capability walk. Results are JSON text. Failures
// are reported as tool errors so the client can show them to the user.
package mcpserver
