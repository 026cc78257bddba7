package cache

// Canonical resource keys. Mutations invalidate these by name, so every
// reader and writer must agree on them.
const (
	KeyLatestSession   = "latest-session"
	KeySessionsHistory = "sessions-history"
	KeyDashboard       = "dashboard"
	KeyStats           = "stats"
	KeyProgress        = "progress"
	KeyPrograms        = "programs"
	KeyExercises       = "exercises"
	KeyTutorials       = "tutorials"
	KeyProfile         = "profile"
)

// NoParams is the params hash for resources fetched without parameters.
const NoParams = ""
