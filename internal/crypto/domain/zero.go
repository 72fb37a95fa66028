package domain

// Zero wipes key material from a slice in place. Callers zero account keys
// and master keys as soon as they are done with them; a nil slice is a no-op.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
