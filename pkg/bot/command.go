package bot

import (
	"strconv"
	"strings"
)

// Command identifies one recognized bot command.
type Command int

const (
	CommandUnknown Command = iota
	CommandStart
	CommandTop
	CommandWorld
	CommandGenre
	CommandSearch
)

const searchPrefix = "/search"

// Classify matches message text against the recognized command words.
//
// Matching is a case-sensitive prefix check, so suffixed command words such
// as /top@BotName still classify. The five prefixes are disjoint, making
// the check order irrelevant.
func Classify(text string) Command {
	switch {
	case strings.HasPrefix(text, "/start"):
		return CommandStart
	case strings.HasPrefix(text, "/top"):
		return CommandTop
	case strings.HasPrefix(text, "/world"):
		return CommandWorld
	case strings.HasPrefix(text, "/genre"):
		return CommandGenre
	case strings.HasPrefix(text, searchPrefix):
		return CommandSearch
	default:
		return CommandUnknown
	}
}

// commandArgs returns the whitespace-separated tokens after the command word.
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) <= 1 {
		return nil
	}

	return fields[1:]
}

// parseLimit reads an optional numeric limit from args at index.
//
// The default is kept unless the token consists entirely of decimal digits;
// a non-numeric token is silently ignored.
func parseLimit(args []string, index int) int {
	if index >= len(args) || !isDigits(args[index]) {
		return defaultLimit
	}

	value, err := strconv.Atoi(args[index])
	if err != nil {
		return defaultLimit
	}

	return value
}

func isDigits(token string) bool {
	if token == "" {
		return false
	}

	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
