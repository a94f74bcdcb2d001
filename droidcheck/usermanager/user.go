package usermanager

import (
	"encoding/json"
	"fmt"
)

// UserInfo flags as printed in hex inside UserInfo{id:name:flags}.
const (
	FlagPrimary        = 0x00000001
	FlagAdmin          = 0x00000002
	FlagGuest          = 0x00000004
	FlagRestricted     = 0x00000008
	FlagInitialized    = 0x00000010
	FlagManagedProfile = 0x00000020
	FlagDisabled       = 0x00000040
	FlagQuietMode      = 0x00000080
	FlagEphemeral      = 0x00000100
	FlagDemo           = 0x00000200
	FlagFull           = 0x00000400
	FlagSystem         = 0x00000800
	FlagProfile        = 0x00001000
)

type optional[T comparable] struct {
	value T
	ok    bool
}

func some[T comparable](v T) optional[T] {
	return optional[T]{value: v, ok: true}
}

func (o optional[T]) get() (T, bool) {
	return o.value, o.ok
}

func (o optional[T]) ptr() *T {
	if !o.ok {
		return nil
	}
	v := o.value
	return &v
}

// User is a point-in-time view of one device user. It cannot be changed
// after it is built; fields dumpsys did not report are unknown rather than
// zero.
type User struct {
	id              int
	serialNo        int
	name            string
	flags           int
	state           UserState
	rawState        string
	hasProfileOwner optional[bool]
	userType        optional[UserType]
	isPrimary       optional[bool]
	parent          optional[int]
}

func (u User) ID() int { return u.id }
func (u User) SerialNo() int { return u.serialNo }
func (u User) Name() string { return u.name }
func (u User) Flags() int { return u.flags }
func (u User) State() UserState { return u.state }

// RawState is the State: token exactly as dumpsys printed it.
func (u User) RawState() string {
	return u.rawState
}

func (u User) HasProfileOwner() (bool, bool) {
	return u.hasProfileOwner.get()
}

func (u User) Type() (UserType, bool) {
	return u.userType.get()
}

func (u User) IsPrimary() (bool, bool) {
	return u.isPrimary.get()
}

// Parent returns the profile parent. Only profiles have one.
func (u User) Parent() (int, bool) {
	return u.parent.get()
}

func (u User) HasFlag(flag int) bool {
	return u.flags&flag == flag
}

// IsProfile reports whether the user is a profile, using its type when known
// and falling back to the header flags.
func (u User) IsProfile() bool {
	if t, ok := u.userType.get(); ok {
		return t.IsProfile()
	}
	return u.HasFlag(FlagManagedProfile) || u.HasFlag(FlagProfile)
}

func (u User) IsRunning() bool {
	return u.state.IsRunning()
}

func (u User) IsUnlocked() bool {
	return u.state.IsUnlocked()
}

func (u User) String() string {
	return fmt.Sprintf("User{id=%d, name=%s, serialNo=%d, state=%s}", u.id, u.name, u.serialNo, u.state)
}

func (u User) MarshalJSON() ([]byte, error) {
	var typeName *string
	if t, ok := u.userType.get(); ok {
		n := t.Name()
		typeName = &n
	}
	return json.Marshal(struct {
		ID              int       `json:"id"`
		SerialNo        int       `json:"serialNo"`
		Name            string    `json:"name"`
		Flags           int       `json:"flags"`
		State           UserState `json:"state"`
		RawState        string    `json:"rawState"`
		HasProfileOwner *bool     `json:"hasProfileOwner"`
		Type            *string   `json:"type"`
		IsPrimary       *bool     `json:"isPrimary"`
		Parent          *int      `json:"parent"`
	}{
		ID:              u.id,
		SerialNo:        u.serialNo,
		Name:            u.name,
		Flags:           u.flags,
		State:           u.state,
		RawState:        u.rawState,
		HasProfileOwner: u.hasProfileOwner.ptr(),
		Type:            typeName,
		IsPrimary:       u.isPrimary.ptr(),
		Parent:          u.parent.ptr(),
	})
}

// UserBuilder assembles a User. Build returns a copy, so later calls on the
// builder do not affect users already built.
type UserBuilder struct {
	user User
}

func NewUserBuilder(id int) *UserBuilder {
	return &UserBuilder{user: User{id: id}}
}

func (b *UserBuilder) SerialNo(serialNo int) *UserBuilder {
	b.user.serialNo = serialNo
	return b
}

func (b *UserBuilder) Name(name string) *UserBuilder {
	b.user.name = name
	return b
}

func (b *UserBuilder) Flags(flags int) *UserBuilder {
	b.user.flags = flags
	return b
}

// State sets the parsed state and the raw token it came from.
func (b *UserBuilder) State(state UserState, raw string) *UserBuilder {
	b.user.state = state
	b.user.rawState = raw
	return b
}

func (b *UserBuilder) HasProfileOwner(v bool) *UserBuilder {
	b.user.hasProfileOwner = some(v)
	return b
}

func (b *UserBuilder) Type(t UserType) *UserBuilder {
	b.user.userType = some(t)
	return b
}

func (b *UserBuilder) IsPrimary(v bool) *UserBuilder {
	b.user.isPrimary = some(v)
	return b
}

func (b *UserBuilder) Parent(parent int) *UserBuilder {
	b.user.parent = some(parent)
	return b
}

func (b *UserBuilder) Build() User {
	return b.user
}
