package redis

import "time"

type Config struct {
	Addrs     []string
	Namespace string
	PoolSize  int
	Password  string
	// TTL expires a session this long after its last save. Zero keeps it forever.
	TTL time.Duration
}
