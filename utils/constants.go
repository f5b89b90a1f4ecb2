// File: utils/constants.go
package utils

import "time"

// AuthSessionPrefix is the prefix used for Redis actor-session keys.
const AuthSessionPrefix = "authSession:"

// AuthSessionTTL is how long a device session survives without activity.
const AuthSessionTTL = 30 * 24 * time.Hour
