package redis

import "fmt"

// Key prefix for all session data
const keyPrefix = "fxdesk"

// sessionKey returns the Redis key for a browser session
func sessionKey(id string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}
