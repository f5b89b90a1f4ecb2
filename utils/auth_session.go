// File: helpr/utils/auth_session.go
package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ActorSession records the device an actor (user or provider) last used.
// Sessions live in Redis only; losing one costs nothing but freshness info.
type ActorSession struct {
	ActorID       string    `json:"actorId"`
	Role          string    `json:"role"` // "user" or "provider"
	DeviceID      string    `json:"deviceId,omitempty"`
	DeviceName    string    `json:"deviceName,omitempty"`
	IP            string    `json:"ip,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

func sessionKey(role, actorID string) string {
	return AuthSessionPrefix + role + ":" + actorID
}

// SaveActorSession stores the session in Redis with the registry TTL.
func SaveActorSession(client *redis.Client, session ActorSession) error {
	session.LastUpdatedAt = time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = session.LastUpdatedAt
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal actor session: %w", err)
	}
	ctx := context.Background()
	if err := client.Set(ctx, sessionKey(session.Role, session.ActorID), data, AuthSessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save actor session: %w", err)
	}
	return nil
}

// TouchActorSession refreshes the session's last-seen marker, creating a
// minimal one when none exists. Best effort.
func TouchActorSession(client *redis.Client, role, actorID, ip string) error {
	session, err := GetActorSession(client, role, actorID)
	if err != nil && err != redis.Nil {
		return err
	}
	if session == nil {
		session = &ActorSession{ActorID: actorID, Role: role}
	}
	if ip != "" {
		session.IP = ip
	}
	return SaveActorSession(client, *session)
}

// GetActorSession retrieves the session from Redis, redis.Nil when absent.
func GetActorSession(client *redis.Client, role, actorID string) (*ActorSession, error) {
	ctx := context.Background()
	data, err := client.Get(ctx, sessionKey(role, actorID)).Result()
	if err != nil {
		return nil, err
	}
	var session ActorSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actor session: %w", err)
	}
	return &session, nil
}

// DeleteActorSession removes an actor session from Redis.
func DeleteActorSession(client *redis.Client, role, actorID string) error {
	ctx := context.Background()
	return client.Del(ctx, sessionKey(role, actorID)).Err()
}
