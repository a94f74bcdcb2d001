package common

// Credentials holds what is needed to reach a lab host and, if asked, to run
// commands there with sudo.
type Credentials struct {
	User          string
	Password      string
	KeyPassphrase string
	SudoPassword  string
}
