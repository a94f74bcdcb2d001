package usermanager

// Parser26 reads the dumpsys user format used from Android O (SDK 26)
// through Q (SDK 29):
//
//	Users:
//	  UserInfo{0:null:13} serialNo=0
//	    State: RUNNING_UNLOCKED
//	    Created: <unknown>
//	    Last logged in: +11m9s675ms ago
//	    Has profile owner: false
//	    Restrictions:
//	      none
//	  UserInfo{10:managedprofileuser:20} serialNo=10
//	    State: -1
//	    ...
//
// This format has no user type or primary information, so those fields are
// left unknown.
type Parser26 struct {
	sdk int
}

func (p Parser26) SDK() int {
	return p.sdk
}

func (p Parser26) Parse(dumpsys string) (*Snapshot, error) {
	dumpsys = normalizeNewlines(dumpsys)
	users, err := parseUsers(dumpsys, p.parseUser)
	if err != nil {
		return nil, err
	}
	return newSnapshot(p.sdk, users, nil), nil
}

func (p Parser26) parseUser(chunk string) (User, error) {
	b, _, err := parseCommonUser(chunk)
	if err != nil {
		return User{}, err
	}
	return b.Build(), nil
}
