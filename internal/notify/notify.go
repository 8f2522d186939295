// Package notify abstracts the reminder side effects: opening the target
// URL and playing a sound. Both are best-effort; a failure is reported to
// the engine as a boolean outcome at most and never interrupts a session.
package notify

// Sink is the interface the engine fires notifications through.
type Sink interface {
	// OpenURL opens the target URL, preferring the configured browser and
	// falling back to the platform default.
	OpenURL(url string) error

	// PlaySound plays the given sound file, falling back to the default
	// sound. Errors are swallowed; callers dispatch this off the timing
	// path.
	PlaySound(file string)
}

// NoopSink does nothing (for testing or disabled notifications)
type NoopSink struct{}

func (NoopSink) OpenURL(url string) error { return nil }
func (NoopSink) PlaySound(file string)    {}
