package shortener

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the string prepended to every token.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithLength caps the encoded part of a token. Values below 1 are ignored.
func WithLength(length int) Option {
	return func(s *Store) {
		if length > 0 {
			s.length = length
		}
	}
}

// WithMaxAttempts bounds the timestamp-salted rehashes before the counter fallback.
// Negative values are ignored.
func WithMaxAttempts(attempts int) Option {
	return func(s *Store) {
		if attempts >= 0 {
			s.maxAttempts = attempts
		}
	}
}

// WithClock replaces the time source used for collision salts and creation times.
func WithClock(clock Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.now = clock
		}
	}
}
