// Package color provides the terminal palette and styles used by regctl's
// console output.
//
// Colors are lipgloss.AdaptiveColor values, so lipgloss picks the light or
// dark variant from the detected terminal background and degrades them to the
// terminal's color profile (TrueColor, 256, 16 or none). NO_COLOR disables
// color entirely.
//
// # Styles
//
//   - SectionStyle: banner printed before each walk step
//   - LabelStyle: "xml response:" style captions
//   - SuccessStyle: positive results (name available, agent created)
//   - WarnStyle: missing capability and early-exit notices
//   - MutedStyle: raw XML echo
//
// # Usage Example
//
//	color.Initialize(true)
//	fmt.Println(color.SectionStyle.Render(color.Banner("Check Name Example")))
package color
