package domain

// AuthMethod identifies how content source requests are authenticated.
type AuthMethod string

// Authentication methods.
const (
	// AuthMethodNone sends requests unauthenticated.
	AuthMethodNone AuthMethod = "none"

	// AuthMethodToken sends a personal access token.
	AuthMethodToken AuthMethod = "token"
)

// Description returns a human-readable description of the method.
func (m AuthMethod) Description() string {
	switch m {
	case AuthMethodNone:
		return "No authentication"
	case AuthMethodToken:
		return "Personal access token"
	default:
		return unknownDescription
	}
}
