package ports

import "time"

type CachePort interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	// DeleteByPrefix removes every key starting with prefix. Matching keys
	// are enumerated before deletion; there is no native range delete.
	DeleteByPrefix(prefix string) error
}
