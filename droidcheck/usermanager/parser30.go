package usermanager

import (
	"strconv"
	"strings"
)

const (
	userTypesMarker = "User types ("

	// userTypesBaseIndentation is the indentation of each type name line
	// under "User types (N types):".
	userTypesBaseIndentation = 4
)

// Parser30 reads the dumpsys user format introduced in Android R (SDK 30).
// On top of the older format, the header line carries isPrimary= and, for
// profiles, parentId=, each user has a Type: line, and a separate section
// describes the user types:
//
//	Users:
//	  UserInfo{0:Owner:c13} serialNo=0 isPrimary=true
//	    Type: android.os.usertype.full.SYSTEM
//	    Flags: 3091 (ADMIN|FULL|INITIALIZED|PRIMARY|SYSTEM)
//	    State: RUNNING_UNLOCKED
//	    ...
//
//	User types (2 types):
//	    android.os.usertype.full.SYSTEM:
//	        mName: android.os.usertype.full.SYSTEM
//	        mBaseType: FULL|SYSTEM
//	        mEnabled: true
//	        mMaxAllowed: -1
//	        mMaxAllowedPerParent: -1
type Parser30 struct {
	sdk int
}

func (p Parser30) SDK() int {
	return p.sdk
}

func (p Parser30) Parse(dumpsys string) (*Snapshot, error) {
	dumpsys = normalizeNewlines(dumpsys)
	userTypes, err := parseUserTypes(dumpsys)
	if err != nil {
		return nil, err
	}

	users, err := parseUsers(dumpsys, func(chunk string) (User, error) {
		return p.parseUser(chunk, userTypes)
	})
	if err != nil {
		return nil, err
	}
	return newSnapshot(p.sdk, users, userTypes), nil
}

func (p Parser30) parseUser(chunk string, userTypes map[string]UserType) (User, error) {
	b, _, err := parseCommonUser(chunk)
	if err != nil {
		return User{}, err
	}
	header := firstLine(chunk)

	if raw, ok := tokenAfter(header, "isPrimary="); ok {
		v, err := parseBoolLiteral(raw)
		if err != nil {
			return User{}, &ParseError{Field: "isPrimary", Raw: chunk, Err: err}
		}
		b.IsPrimary(v)
	}

	if raw, ok := tokenAfter(header, "parentId="); ok {
		parent, err := strconv.Atoi(raw)
		if err != nil {
			return User{}, newParseError("parentId", chunk, "invalid parent id %q", raw)
		}
		b.Parent(parent)
	}

	if name, ok := lineValue(chunk, "Type: "); ok {
		t, known := userTypes[name]
		if !known {
			return User{}, newParseError("type", chunk, "user type %q is not listed in the user types section", name)
		}
		b.Type(t)
	}

	return b.Build(), nil
}

// parseUserTypes reads the "User types (N types):" section. A dump without
// the section yields no types.
func parseUserTypes(dumpsys string) (map[string]UserType, error) {
	userTypes := map[string]UserType{}

	start := indexAtLineStart(dumpsys, userTypesMarker)
	if start < 0 {
		return userTypes, nil
	}
	section := dumpsys[start:]
	nl := strings.IndexByte(section, '\n')
	if nl < 0 {
		return userTypes, nil
	}
	section = section[nl+1:]
	if end := strings.Index(section, "\n\n"); end >= 0 {
		section = section[:end+1]
	}

	for _, chunk := range splitChunks(section, userTypesBaseIndentation) {
		t, err := parseUserType(chunk)
		if err != nil {
			return nil, err
		}
		userTypes[t.Name()] = t
	}
	return userTypes, nil
}

func parseUserType(chunk string) (UserType, error) {
	name, ok := lineValue(chunk, "mName: ")
	if !ok || name == "" {
		return UserType{}, newParseError("userType.name", chunk, "missing mName:")
	}

	rawBase, ok := lineValue(chunk, "mBaseType: ")
	if !ok {
		return UserType{}, newParseError("userType.baseType", chunk, "missing mBaseType:")
	}
	baseType, err := ParseBaseType(rawBase)
	if err != nil {
		return UserType{}, &ParseError{Field: "userType.baseType", Raw: chunk, Err: err}
	}

	rawEnabled, ok := lineValue(chunk, "mEnabled: ")
	if !ok {
		return UserType{}, newParseError("userType.enabled", chunk, "missing mEnabled:")
	}
	enabled, err := parseBoolLiteral(rawEnabled)
	if err != nil {
		return UserType{}, &ParseError{Field: "userType.enabled", Raw: chunk, Err: err}
	}

	maxAllowed, err := intLine(chunk, "mMaxAllowed: ", "userType.maxAllowed")
	if err != nil {
		return UserType{}, err
	}
	maxAllowedPerParent, err := intLine(chunk, "mMaxAllowedPerParent: ", "userType.maxAllowedPerParent")
	if err != nil {
		return UserType{}, err
	}

	return NewUserType(name, baseType, enabled, maxAllowed, maxAllowedPerParent), nil
}

func intLine(chunk, key, field string) (int, error) {
	raw, ok := lineValue(chunk, key)
	if !ok {
		return 0, newParseError(field, chunk, "missing %s", strings.TrimSpace(key))
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, newParseError(field, chunk, "invalid integer %q", raw)
	}
	return v, nil
}
