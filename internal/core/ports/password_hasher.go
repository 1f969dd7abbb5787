package ports

// PasswordHasher is a one-way transform over passwords with a per-call
// random salt embedded in the output.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify returns false on any mismatch or malformed hash.
	Verify(password, hash string) bool
}
