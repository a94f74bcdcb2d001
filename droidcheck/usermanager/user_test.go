package usermanager

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderProducesIndependentCopies(t *testing.T) {
	b := NewUserBuilder(10).Name("first").SerialNo(3)
	first := b.Build()

	b.Name("second").HasProfileOwner(true)
	second := b.Build()

	assert.Equal(t, "first", first.Name())
	_, known := first.HasProfileOwner()
	assert.False(t, known)
	assert.Equal(t, "second", second.Name())
	assert.Equal(t, first.ID(), second.ID())
}

func TestUserJSON(t *testing.T) {
	u := NewUserBuilder(0).
		Name("null").
		SerialNo(0).
		Flags(0x13).
		State(UserStateRunningUnlocked, "RUNNING_UNLOCKED").
		HasProfileOwner(false).
		Build()

	b, err := json.Marshal(u)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "null", got["name"])
	assert.Equal(t, "RUNNING_UNLOCKED", got["state"])
	assert.Equal(t, false, got["hasProfileOwner"])
	assert.Nil(t, got["isPrimary"])
	assert.Nil(t, got["type"])
}

func TestUserStates(t *testing.T) {
	assert.Equal(t, UserStateRunningUnlocking, ParseUserState("RUNNING_UNLOCKING"))
	assert.Equal(t, UserStateStopping, ParseUserState("STOPPING"))
	assert.Equal(t, UserStateUnknown, ParseUserState("-1"))
	assert.Equal(t, "BOOTING", UserStateBooting.String())
	assert.True(t, UserStateBooting.IsRunning())
	assert.False(t, UserStateShutdown.IsRunning())
	assert.False(t, UserStateNotRunning.IsRunning())
	assert.False(t, UserStateRunningLocked.IsUnlocked())
}

func TestParseBaseType(t *testing.T) {
	b, err := ParseBaseType("FULL|SYSTEM")
	require.NoError(t, err)
	assert.True(t, b.Has(BaseTypeFull))
	assert.True(t, b.Has(BaseTypeSystem))
	assert.False(t, b.Has(BaseTypeProfile))
	assert.Equal(t, "FULL|SYSTEM", b.String())

	b, err = ParseBaseType("0")
	require.NoError(t, err)
	assert.Equal(t, BaseType(0), b)

	_, err = ParseBaseType("FULL|BOGUS")
	assert.Error(t, err)
}

func TestSnapshotAccessorsReturnCopies(t *testing.T) {
	s := newSnapshot(30, map[int]User{0: NewUserBuilder(0).Build()}, nil)

	users := s.Users()
	delete(users, 0)

	assert.Equal(t, 1, s.Len())
	_, ok := s.User(0)
	assert.True(t, ok)
}

func TestSnapshotJSON(t *testing.T) {
	t30 := NewUserType(SystemUserTypeName, BaseTypeFull|BaseTypeSystem, true, UnlimitedCount, UnlimitedCount)
	s := newSnapshot(30,
		map[int]User{
			10: NewUserBuilder(10).Build(),
			0:  NewUserBuilder(0).Type(t30).IsPrimary(true).Build(),
		},
		map[string]UserType{t30.Name(): t30},
	)

	b, err := json.Marshal(s)
	require.NoError(t, err)

	var got struct {
		ID    string `json:"id"`
		SDK   int    `json:"sdk"`
		Users []struct {
			ID   int     `json:"id"`
			Type *string `json:"type"`
		} `json:"users"`
		UserTypes []struct {
			Name     string   `json:"name"`
			BaseType []string `json:"baseType"`
		} `json:"userTypes"`
	}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, s.ID().String(), got.ID)
	assert.Equal(t, 30, got.SDK)
	require.Len(t, got.Users, 2)
	assert.Equal(t, 0, got.Users[0].ID)
	require.NotNil(t, got.Users[0].Type)
	assert.Equal(t, SystemUserTypeName, *got.Users[0].Type)
	assert.Equal(t, []string{"FULL", "SYSTEM"}, got.UserTypes[0].BaseType)
}
