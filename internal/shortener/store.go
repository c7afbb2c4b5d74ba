package shortener

import (
	"errors"
	"strconv"
	"sync"
	"time"
)

const (
	// DefaultPrefix is prepended to every encoded token.
	DefaultPrefix = "https://short.url/"
	// DefaultLength caps the encoded part of a token.
	DefaultLength = 6
	// DefaultMaxAttempts bounds the timestamp-salted rehashes tried on collision.
	DefaultMaxAttempts = 8

	// maxFallbackPasses bounds the counter rehashes inside the truncated token space.
	maxFallbackPasses = 64
	overflowSeparator = "-"
)

// ErrNotFound is returned when a token was never issued by the store.
var ErrNotFound = errors.New("invalid short URL")

// Entry pairs a short token with the long URL it stands for.
type Entry struct {
	Token     string
	LongURL   string
	CreatedAt time.Time
}

// Clock returns the current time.
type Clock func() time.Time

// Store holds the token -> long URL mapping for the lifetime of the process.
// Entries are never updated or removed.
type Store struct {
	mu          sync.RWMutex
	entries     map[string]Entry
	prefix      string
	length      int
	maxAttempts int
	now         Clock
	fallback    uint64
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		entries:     make(map[string]Entry),
		prefix:      DefaultPrefix,
		length:      DefaultLength,
		maxAttempts: DefaultMaxAttempts,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Shorten returns the token for longURL, creating one if needed.
func (s *Store) Shorten(longURL string) string {
	entry, _ := s.Put(longURL)

	return entry.Token
}

// Put returns the entry for longURL and reports whether it was created by this call.
// The reverse scan, token derivation and insert run under one lock, so concurrent
// calls with the same URL always agree on a single entry.
func (s *Store) Put(longURL string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.entries {
		if entry.LongURL == longURL {
			return entry, false
		}
	}

	token := s.candidate(longURL)

	for attempt := 0; s.taken(token) && attempt < s.maxAttempts; attempt++ {
		token = s.candidate(longURL + strconv.FormatInt(s.now().UnixMilli(), 10))
	}

	// The counter never repeats, so every pass hashes a fresh input.
	for pass := 0; s.taken(token); pass++ {
		s.fallback++

		if pass < maxFallbackPasses {
			token = s.candidate(longURL + "#" + strconv.FormatUint(s.fallback, 10))

			continue
		}

		token = s.overflow(longURL)
	}

	entry := Entry{
		Token:     token,
		LongURL:   longURL,
		CreatedAt: s.now(),
	}
	s.entries[token] = entry

	return entry, true
}

// Expand returns the long URL behind token.
func (s *Store) Expand(token string) (string, error) {
	entry, err := s.Lookup(token)
	if err != nil {
		return "", err
	}

	return entry.LongURL, nil
}

// Lookup returns the entry stored under token, or ErrNotFound.
func (s *Store) Lookup(token string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[token]
	if !ok {
		return Entry{}, ErrNotFound
	}

	return entry, nil
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Prefix returns the string every token starts with.
func (s *Store) Prefix() string {
	return s.prefix
}

func (s *Store) candidate(input string) string {
	code := Encode(Magnitude(HashCode(input)))
	if len(code) > s.length {
		code = code[:s.length]
	}

	return s.prefix + code
}

// overflow builds a token outside the truncated space: the full code, a separator that is
// not a base62 digit, then the store-wide counter. No two calls can produce the same token.
func (s *Store) overflow(longURL string) string {
	return s.prefix + Encode(Magnitude(HashCode(longURL))) + overflowSeparator +
		string(encoding.FormatUint(s.fallback))
}

func (s *Store) taken(token string) bool {
	_, ok := s.entries[token]

	return ok
}
