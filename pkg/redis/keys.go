package redis

import "strings"

// keyspace prefixes every key so the instance can share a redis database.
type keyspace string

const defaultKeyspace keyspace = "lv"

func (k keyspace) session(accessID string) string {
	return k.join("session", "access", accessID)
}

func (k keyspace) rateLimit(scope string) string {
	return k.join("rate_limit", scope)
}

// join drops blank parts so a missing id never yields a shared key like
// "lv:session:access:".
func (k keyspace) join(parts ...string) string {
	var b strings.Builder
	b.WriteString(string(k))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			b.WriteByte(':')
			b.WriteString(part)
		}
	}
	return b.String()
}
