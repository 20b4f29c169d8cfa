package command

import "strings"

// Invocation is the parsed form of one prefixed command message.
type Invocation struct {
	Name    string
	Args    []string
	RawArgs string
}

// Parse turns a message body into a command invocation. It returns false for
// ordinary chatter: bodies that do not start with the prefix, or that carry
// nothing after it. The name is lowercased; RawArgs keeps the original
// spacing and casing of everything after the name.
func Parse(body, prefix string) (Invocation, bool) {
	if !strings.HasPrefix(body, prefix) {
		return Invocation{}, false
	}
	rest := strings.TrimSpace(body[len(prefix):])
	if rest == "" {
		return Invocation{}, false
	}
	fields := strings.Fields(rest)
	name := strings.ToLower(fields[0])
	rawArgs := strings.TrimSpace(rest[len(fields[0]):])
	return Invocation{Name: name, Args: fields[1:], RawArgs: rawArgs}, true
}
