package domain

// UserRole distinguishes passengers from drivers in the directory.
type UserRole string

const (
	UserRolePassenger UserRole = "PASSENGER"
	UserRoleDriver    UserRole = "DRIVER"
)

// DirectoryUser is the slice of a passenger or driver the core needs from the
// external directory: existence and availability. Profile data lives outside
// this system.
type DirectoryUser struct {
	ID          string
	Role        UserRole
	IsAvailable bool
}

// DriverStats is the running earnings/cancellation counter the core updates
// as a side effect of completions and cancellations.
type DriverStats struct {
	DriverID       string
	TotalEarnings  float64
	CompletedRides int
	CancelledRides int
}
