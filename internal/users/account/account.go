// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account is the user registry: the set of users known to the service,
keyed by the identity provider's stable subject id.

# Architecture

  - Entities: User (id + free-form string profile fields).
  - Persistence: Redis hashes (default) or a PostgreSQL JSONB table.
  - Callers: only the credential flows in the auth package, after a token
    has been verified.
*/
package account

import (
	"context"
	"encoding/json"
	"maps"

	"github.com/taibuivan/geodrop/internal/platform/constants"
)

// # Domain Entities

// User is a registered principal and the profile fields supplied at sign-up.
type User struct {
	ID         string
	Attributes map[string]string
}

// Fields returns the profile as stored: every attribute plus the id.
func (user *User) Fields() map[string]string {
	fields := make(map[string]string, len(user.Attributes)+1)
	maps.Copy(fields, user.Attributes)
	fields[constants.FieldID] = user.ID
	return fields
}

// MarshalJSON renders the user as one flat object, the shape clients sent at sign-up.
func (user *User) MarshalJSON() ([]byte, error) {
	return json.Marshal(user.Fields())
}

// newUser rebuilds a User from stored fields.
func newUser(id string, fields map[string]string) *User {
	attributes := make(map[string]string, len(fields))
	for key, value := range fields {
		if key != constants.FieldID {
			attributes[key] = value
		}
	}
	return &User{ID: id, Attributes: attributes}
}

// # Repository Contracts

// UserRepository defines the persistence contract for registered users.
type UserRepository interface {
	/*
		Upsert creates the user or merges the given fields into an existing one.
		Fields present in both win with the new value.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Storage failures
	*/
	Upsert(context context.Context, user *User) error

	/*
		Exists reports whether a user record is present.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - bool: Presence
		  - error: Storage failures
	*/
	Exists(context context.Context, id string) (bool, error)

	/*
		FindByID loads a user record.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Loaded user
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*User, error)
}
