package usermanager

import "context"

// CreateOptions describes a user to create with "pm create-user".
type CreateOptions struct {
	Name string
	// ProfileOf makes the new user a profile of the given user.
	ProfileOf *int
	Managed   bool
	// UserType is passed as --user-type, supported from SDK 30.
	UserType string
}

// UserManager encompasses operations related to device users.
type UserManager interface {
	// All returns a fresh snapshot of every user on the device.
	All(ctx context.Context) (*Snapshot, error)

	// Find looks a user up by ID in a fresh snapshot.
	Find(ctx context.Context, id int) (User, bool, error)

	Exists(ctx context.Context, id int) (bool, error)

	// CurrentUser returns the ID of the foreground user.
	CurrentUser(ctx context.Context) (int, error)

	// Create adds a user and returns its ID.
	Create(ctx context.Context, opts CreateOptions) (int, error)

	Remove(ctx context.Context, id int) error
	Start(ctx context.Context, id int) error
	Stop(ctx context.Context, id int) error
	Switch(ctx context.Context, id int) error
}
