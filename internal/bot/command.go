// Package bot parses inbound chat text into commands.
package bot

import "strings"

// Kind discriminates parsed chat commands.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindStart
	KindHelp
	KindReportHazard
	KindDescribe
	KindCloseEvent
)

// Command is a parsed chat message. Payload carries the free text of a
// Describe command, or the raw text of an unrecognized one.
type Command struct {
	Kind    Kind
	Payload string
}

// Button labels kept for compatibility with the legacy reply keyboards:
// older clients send the literal label instead of a slash command.
const (
	labelReportHazard = "report hazard"
	labelAllClear     = "all clear"
)

// Parse maps chat text onto a tagged command. Matching is
// case-insensitive and tolerates surrounding whitespace.
func Parse(text string) Command {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	switch {
	case lower == "/start":
		return Command{Kind: KindStart}
	case lower == "/help" || lower == "help":
		return Command{Kind: KindHelp}
	case lower == "/report" || lower == labelReportHazard:
		return Command{Kind: KindReportHazard}
	case lower == "/allclear" || lower == labelAllClear:
		return Command{Kind: KindCloseEvent}
	case strings.HasPrefix(lower, "/describe"):
		return Command{Kind: KindDescribe, Payload: strings.TrimSpace(trimmed[len("/describe"):])}
	}
	return Command{Kind: KindUnrecognized, Payload: trimmed}
}
