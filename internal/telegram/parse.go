package telegram

import (
	"errors"
	"strconv"
	"strings"
)

var errUsage = errors.New("usage")

// parseRemindArgs splits "/remind" arguments into the clock and the text.
// Accepted forms: "19:00 text", "19:00\ntext", "(19:00)\ntext".
func parseRemindArgs(args string) (clock, text string, err error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return "", "", errUsage
	}
	clock, text = args, ""
	if i := strings.IndexAny(args, " \t\n"); i >= 0 {
		clock, text = args[:i], strings.TrimSpace(args[i:])
	}
	clock = strings.TrimSuffix(strings.TrimPrefix(clock, "("), ")")
	return clock, text, nil
}

// parseID parses a single positive reminder id.
func parseID(args string) (int64, error) {
	fields := strings.Fields(args)
	if len(fields) != 1 {
		return 0, errUsage
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, errUsage
	}
	return id, nil
}

// parseRetimeArgs parses "ID HH:MM".
func parseRetimeArgs(args string) (int64, string, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return 0, "", errUsage
	}
	id, err := parseID(fields[0])
	if err != nil {
		return 0, "", err
	}
	return id, fields[1], nil
}
