package usermanager

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Snapshot is the result of parsing one dumpsys user dump. It never changes;
// take a new one to see newer state.
type Snapshot struct {
	id        uuid.UUID
	takenAt   time.Time
	sdk       int
	users     map[int]User
	userTypes map[string]UserType
}

func newSnapshot(sdk int, users map[int]User, userTypes map[string]UserType) *Snapshot {
	if userTypes == nil {
		userTypes = map[string]UserType{}
	}
	return &Snapshot{
		id:        uuid.New(),
		takenAt:   time.Now(),
		sdk:       sdk,
		users:     users,
		userTypes: userTypes,
	}
}

func (s *Snapshot) ID() uuid.UUID { return s.id }
func (s *Snapshot) TakenAt() time.Time { return s.takenAt }

// SDK is the version the parser variant was selected for.
func (s *Snapshot) SDK() int { return s.sdk }

func (s *Snapshot) Len() int { return len(s.users) }

// Users returns a copy of the users keyed by ID.
func (s *Snapshot) Users() map[int]User {
	out := make(map[int]User, len(s.users))
	for id, u := range s.users {
		out[id] = u
	}
	return out
}

// UserTypes returns a copy of the user types keyed by name.
func (s *Snapshot) UserTypes() map[string]UserType {
	out := make(map[string]UserType, len(s.userTypes))
	for name, t := range s.userTypes {
		out[name] = t
	}
	return out
}

func (s *Snapshot) User(id int) (User, bool) {
	u, ok := s.users[id]
	return u, ok
}

func (s *Snapshot) UserType(name string) (UserType, bool) {
	t, ok := s.userTypes[name]
	return t, ok
}

// IDs returns the user IDs in ascending order.
func (s *Snapshot) IDs() []int {
	ids := make([]int, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Primary returns the user reported as primary. It is only known for dumps
// that carry isPrimary.
func (s *Snapshot) Primary() (User, bool) {
	for _, id := range s.IDs() {
		u := s.users[id]
		if primary, ok := u.IsPrimary(); ok && primary {
			return u, true
		}
	}
	return User{}, false
}

// ProfilesOf returns the profiles whose parent is the given user, ordered by ID.
func (s *Snapshot) ProfilesOf(parent int) []User {
	var profiles []User
	for _, id := range s.IDs() {
		u := s.users[id]
		if p, ok := u.Parent(); ok && p == parent {
			profiles = append(profiles, u)
		}
	}
	return profiles
}

func (s *Snapshot) MarshalJSON() ([]byte, error) {
	users := make([]User, 0, len(s.users))
	for _, id := range s.IDs() {
		users = append(users, s.users[id])
	}
	names := make([]string, 0, len(s.userTypes))
	for name := range s.userTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	types := make([]UserType, 0, len(names))
	for _, name := range names {
		types = append(types, s.userTypes[name])
	}

	return json.Marshal(struct {
		ID        string     `json:"id"`
		TakenAt   time.Time  `json:"takenAt"`
		SDK       int        `json:"sdk"`
		Users     []User     `json:"users"`
		UserTypes []UserType `json:"userTypes"`
	}{
		ID:        s.id.String(),
		TakenAt:   s.takenAt,
		SDK:       s.sdk,
		Users:     users,
		UserTypes: types,
	})
}
