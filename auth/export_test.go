package auth

// SetPassJoined installs a callback run each time a caller attaches to an
// authentication pass.
func SetPassJoined(c *SessionController, fn func()) {
	c.passJoined = fn
}
