package modmock

// options holds the behaviour switches in force for one enable/disable
// cycle. Enable snapshots the defaults merged with its Option arguments;
// WarnOnReplace and WarnOnUnregistered mutate the live set afterwards.
type options struct {
	cleanCache         bool
	warnOnReplace      bool
	warnOnUnregistered bool
}

func defaultOptions() options {
	return options{
		warnOnReplace:      true,
		warnOnUnregistered: true,
	}
}

// Option adjusts interception behaviour at enable time.
type Option func(*options)

// WithCleanCache controls whether enabling interception swaps in an isolated
// module cache, keeping loads made while mocking out of the runtime's own
// cache. Off by default.
func WithCleanCache(enabled bool) Option {
	return func(o *options) { o.cleanCache = enabled }
}

// WithReplaceWarnings controls the warning emitted when a registration
// replaces an existing one for the same module. On by default.
func WithReplaceWarnings(enabled bool) Option {
	return func(o *options) { o.warnOnReplace = enabled }
}

// WithUnregisteredWarnings controls the warning emitted when a module with
// no registration loads while interception is active. On by default.
func WithUnregisteredWarnings(enabled bool) Option {
	return func(o *options) { o.warnOnUnregistered = enabled }
}
