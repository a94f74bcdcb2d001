package usermanager

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	usersMarker = "Users:\n"

	// userListBaseIndentation is the indentation of each UserInfo{...} line
	// under "Users:".
	userListBaseIndentation = 2

	minSupportedSDK = 26
	sdkR            = 30
)

// Parser turns the output of "dumpsys user" into a Snapshot. Implementations
// are pure and safe for concurrent use.
type Parser interface {
	Parse(dumpsys string) (*Snapshot, error)
	SDK() int
}

// NewParser returns the parser for the dumpsys format of the given SDK
// version.
func NewParser(sdk int) (Parser, error) {
	switch {
	case sdk < minSupportedSDK:
		return nil, fmt.Errorf("%w: %d (minimum %d)", ErrUnsupportedVersion, sdk, minSupportedSDK)
	case sdk < sdkR:
		return Parser26{sdk: sdk}, nil
	default:
		return Parser30{sdk: sdk}, nil
	}
}

// normalizeNewlines turns CRLF dumps, such as ones saved on Windows, into
// the LF form the anchors expect.
func normalizeNewlines(dumpsys string) string {
	return strings.ReplaceAll(dumpsys, "\r\n", "\n")
}

// usersRegion returns the text between the "Users:" line and the next blank
// line, including the trailing newline of the last user line.
func usersRegion(dumpsys string) (string, error) {
	start := indexAtLineStart(dumpsys, usersMarker)
	if start < 0 {
		return "", newParseError("users", dumpsys, "missing %q marker", strings.TrimSpace(usersMarker))
	}

	// Keep the marker's own newline so that "Users:\n\n" finds its blank
	// line at offset 0.
	rest := dumpsys[start+len(usersMarker)-1:]
	end := strings.Index(rest, "\n\n")
	if end < 0 {
		return "", newParseError("users", rest, "user list is not terminated by a blank line")
	}
	return rest[1 : end+1], nil
}

// indexAtLineStart finds marker at the start of the text or right after a
// newline.
func indexAtLineStart(s, marker string) int {
	if strings.HasPrefix(s, marker) {
		return 0
	}
	i := strings.Index(s, "\n"+marker)
	if i < 0 {
		return -1
	}
	return i + 1
}

// splitChunks groups lines so that each line indented by exactly
// baseIndentation starts a new chunk and all other lines join the current
// one. Lines before the first base line form a chunk of their own.
func splitChunks(region string, baseIndentation int) []string {
	region = strings.TrimSuffix(region, "\n")
	if region == "" {
		return nil
	}

	var chunks []string
	var current strings.Builder
	for _, line := range strings.Split(region, "\n") {
		if indentation(line) == baseIndentation && current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func indentation(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

func firstLine(chunk string) string {
	if i := strings.IndexByte(chunk, '\n'); i >= 0 {
		return chunk[:i]
	}
	return chunk
}

// lineValue returns the rest of the first line whose trimmed text starts
// with key.
func lineValue(chunk, key string) (string, bool) {
	for _, line := range strings.Split(chunk, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, key) {
			return strings.TrimRight(trimmed[len(key):], " \r"), true
		}
	}
	return "", false
}

// tokenAfter returns the text following anchor up to the next space or
// newline.
func tokenAfter(s, anchor string) (string, bool) {
	i := strings.Index(s, anchor)
	if i < 0 {
		return "", false
	}
	rest := s[i+len(anchor):]
	if end := strings.IndexAny(rest, " \n"); end >= 0 {
		rest = rest[:end]
	}
	return rest, true
}

type userInfo struct {
	id    int
	name  string
	flags int
}

// parseUserInfo reads UserInfo{id:name:hexflags}. The name may itself
// contain colons.
func parseUserInfo(chunk string) (userInfo, error) {
	header := firstLine(chunk)
	start := strings.Index(header, "UserInfo{")
	if start < 0 {
		return userInfo{}, newParseError("userInfo", chunk, "missing UserInfo{ anchor")
	}
	inner := header[start+len("UserInfo{"):]
	end := strings.Index(inner, "}")
	if end < 0 {
		return userInfo{}, newParseError("userInfo", chunk, "unterminated UserInfo{")
	}
	inner = inner[:end]

	first := strings.Index(inner, ":")
	last := strings.LastIndex(inner, ":")
	if first < 0 || first == last {
		return userInfo{}, newParseError("userInfo", chunk, "expected id:name:flags, got %q", inner)
	}

	id, err := strconv.Atoi(inner[:first])
	if err != nil {
		return userInfo{}, newParseError("id", chunk, "invalid user id %q", inner[:first])
	}
	flags, err := strconv.ParseInt(inner[last+1:], 16, 64)
	if err != nil {
		return userInfo{}, newParseError("flags", chunk, "invalid hex flags %q", inner[last+1:])
	}

	return userInfo{id: id, name: inner[first+1 : last], flags: int(flags)}, nil
}

func parseBoolLiteral(s string) (bool, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

// parseCommonUser extracts the fields every supported format carries.
func parseCommonUser(chunk string) (*UserBuilder, userInfo, error) {
	info, err := parseUserInfo(chunk)
	if err != nil {
		return nil, userInfo{}, err
	}

	serial, ok := tokenAfter(firstLine(chunk), "serialNo=")
	if !ok {
		return nil, info, newParseError("serialNo", chunk, "missing serialNo=")
	}
	serialNo, err := strconv.Atoi(serial)
	if err != nil {
		return nil, info, newParseError("serialNo", chunk, "invalid serial number %q", serial)
	}

	rawState, ok := lineValue(chunk, "State: ")
	if !ok {
		return nil, info, newParseError("state", chunk, "missing State: line")
	}
	if rawState == "" {
		return nil, info, newParseError("state", chunk, "empty State: value")
	}

	b := NewUserBuilder(info.id).
		Name(info.name).
		Flags(info.flags).
		SerialNo(serialNo).
		State(ParseUserState(rawState), rawState)

	if raw, ok := lineValue(chunk, "Has profile owner: "); ok {
		v, err := parseBoolLiteral(raw)
		if err != nil {
			return nil, info, &ParseError{Field: "hasProfileOwner", Raw: chunk, Err: err}
		}
		b.HasProfileOwner(v)
	}

	return b, info, nil
}

// parseUsers runs parseUser over every chunk of the users region.
func parseUsers(dumpsys string, parseUser func(chunk string) (User, error)) (map[int]User, error) {
	region, err := usersRegion(dumpsys)
	if err != nil {
		return nil, err
	}

	users := map[int]User{}
	for _, chunk := range splitChunks(region, userListBaseIndentation) {
		u, err := parseUser(chunk)
		if err != nil {
			return nil, err
		}
		if _, dup := users[u.ID()]; dup {
			return nil, newParseError("id", chunk, "duplicate user id %d", u.ID())
		}
		users[u.ID()] = u
	}
	return users, nil
}
