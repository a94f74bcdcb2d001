package usermanager

// UserState is the running state of a user as reported by dumpsys.
type UserState int

const (
	// UserStateUnknown covers the -1 sentinel that dumpsys prints for users
	// without a running state, and any token this package does not recognize.
	UserStateUnknown UserState = iota
	UserStateNotRunning
	UserStateBooting
	UserStateRunningLocked
	UserStateRunningUnlocking
	UserStateRunningUnlocked
	UserStateStopping
	UserStateShutdown
)

var userStateNames = map[UserState]string{
	UserStateUnknown:          "UNKNOWN",
	UserStateNotRunning:       "NOT_RUNNING",
	UserStateBooting:          "BOOTING",
	UserStateRunningLocked:    "RUNNING_LOCKED",
	UserStateRunningUnlocking: "RUNNING_UNLOCKING",
	UserStateRunningUnlocked:  "RUNNING_UNLOCKED",
	UserStateStopping:         "STOPPING",
	UserStateShutdown:         "SHUTDOWN",
}

var dumpsysStates = map[string]UserState{
	"BOOTING":           UserStateBooting,
	"RUNNING_LOCKED":    UserStateRunningLocked,
	"RUNNING_UNLOCKING": UserStateRunningUnlocking,
	"RUNNING_UNLOCKED":  UserStateRunningUnlocked,
	"STOPPING":          UserStateStopping,
	"SHUTDOWN":          UserStateShutdown,
}

// ParseUserState maps a dumpsys state token. Unrecognized tokens, including
// "-1", map to UserStateUnknown.
func ParseUserState(token string) UserState {
	if s, ok := dumpsysStates[token]; ok {
		return s
	}
	return UserStateUnknown
}

func (s UserState) String() string {
	if name, ok := userStateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

func (s UserState) IsRunning() bool {
	switch s {
	case UserStateBooting, UserStateRunningLocked, UserStateRunningUnlocking, UserStateRunningUnlocked:
		return true
	}
	return false
}

func (s UserState) IsUnlocked() bool {
	return s == UserStateRunningUnlocked
}

func (s UserState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
