package usermanager

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// UnlimitedCount is how dumpsys reports no limit on user counts.
const UnlimitedCount = -1

const (
	SystemUserTypeName         = "android.os.usertype.full.SYSTEM"
	SecondaryUserTypeName      = "android.os.usertype.full.SECONDARY"
	GuestUserTypeName          = "android.os.usertype.full.GUEST"
	ManagedProfileUserTypeName = "android.os.usertype.profile.MANAGED"
)

// BaseType is the set of base classifications a user type belongs to.
type BaseType uint

const (
	BaseTypeFull BaseType = 1 << iota
	BaseTypeSystem
	BaseTypeProfile
)

var baseTypeNames = []struct {
	flag BaseType
	name string
}{
	{BaseTypeFull, "FULL"},
	{BaseTypeSystem, "SYSTEM"},
	{BaseTypeProfile, "PROFILE"},
}

// ParseBaseType parses "FULL|SYSTEM" style flag lists. "0" and "" are empty.
func ParseBaseType(s string) (BaseType, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	var b BaseType
	for _, part := range strings.Split(s, "|") {
		found := false
		for _, n := range baseTypeNames {
			if n.name == part {
				b |= n.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown base type %q", part)
		}
	}
	return b, nil
}

func (b BaseType) Has(flag BaseType) bool {
	return b&flag == flag
}

func (b BaseType) Names() []string {
	var names []string
	for _, n := range baseTypeNames {
		if b.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	sort.Strings(names)
	return names
}

func (b BaseType) String() string {
	if b == 0 {
		return "0"
	}
	return strings.Join(b.Names(), "|")
}

// UserType describes one user type registered on the device.
type UserType struct {
	name                string
	baseType            BaseType
	enabled             bool
	maxAllowed          int
	maxAllowedPerParent int
}

// NewUserType builds a UserType. Use UnlimitedCount for no limit.
func NewUserType(name string, baseType BaseType, enabled bool, maxAllowed, maxAllowedPerParent int) UserType {
	return UserType{
		name:                name,
		baseType:            baseType,
		enabled:             enabled,
		maxAllowed:          maxAllowed,
		maxAllowedPerParent: maxAllowedPerParent,
	}
}

func (t UserType) Name() string { return t.name }
func (t UserType) BaseType() BaseType { return t.baseType }
func (t UserType) Enabled() bool { return t.enabled }
func (t UserType) MaxAllowed() int { return t.maxAllowed }
func (t UserType) MaxAllowedPerParent() int { return t.maxAllowedPerParent }

func (t UserType) IsProfile() bool {
	return t.baseType.Has(BaseTypeProfile)
}

func (t UserType) String() string {
	return t.name
}

func (t UserType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name                string   `json:"name"`
		BaseType            []string `json:"baseType"`
		Enabled             bool     `json:"enabled"`
		MaxAllowed          int      `json:"maxAllowed"`
		MaxAllowedPerParent int      `json:"maxAllowedPerParent"`
	}{
		Name:                t.name,
		BaseType:            t.baseType.Names(),
		Enabled:             t.enabled,
		MaxAllowed:          t.maxAllowed,
		MaxAllowedPerParent: t.maxAllowedPerParent,
	})
}
