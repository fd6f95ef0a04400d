package cache

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// ICache is the interface for the SquirrelDB cache service. All operations
// return a *document.Error (possibly wrapped) on failure so callers can
// branch on the error code.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type ICache interface {
	// Get returns the value stored under key. A missing key yields a
	// NotFound error.
	Get(key string) (string, error)
	// Set stores a value under key. A positive ttlSeconds attaches an
	// expiration, zero or negative stores the value without one.
	Set(key, value string, ttlSeconds int) error
	// Del removes keys and returns how many of them existed.
	Del(keys ...string) (int64, error)
	// Exists reports whether the key is present.
	Exists(key string) (bool, error)
	// Expire attaches an expiration to an existing key. It returns false
	// if the key does not exist.
	Expire(key string, seconds int) (bool, error)
	// TTL returns the remaining lifetime of a key in seconds. The server
	// answers -1 for keys without expiration and -2 for missing keys.
	TTL(key string) (int64, error)
	// Persist removes the expiration from a key. It returns false if the
	// key does not exist or carries no expiration.
	Persist(key string) (bool, error)
	// Incr increments the integer value of a key by one and returns the
	// new value. Missing keys start at zero.
	Incr(key string) (int64, error)
	// Decr decrements the integer value of a key by one and returns the
	// new value. Missing keys start at zero.
	Decr(key string) (int64, error)
	// IncrBy adds amount to the integer value of a key and returns the
	// new value.
	IncrBy(key string, amount int64) (int64, error)
	// Keys returns all keys matching the glob-style pattern.
	Keys(pattern string) ([]string, error)
	// DBSize returns the number of keys in the cache.
	DBSize() (int64, error)
	// FlushDB removes all keys from the cache.
	FlushDB() error
	// Ping performs a server round trip and verifies the response.
	Ping() error
	// Close terminates the connection. It is safe to call multiple times.
	Close() error
}
