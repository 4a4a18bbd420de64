// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns of the relational store so
// queries never embed raw identifiers.
package schema

// UserProfileTable represents the 'users.profile' table
type UserProfileTable struct {
	Table      string
	ID         string
	Attributes string
	CreatedAt  string
	UpdatedAt  string
}

// UserProfile is the schema definition for users.profile
var UserProfile = UserProfileTable{
	Table:      "users.profile",
	ID:         "id",
	Attributes: "attributes",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
}

// Columns returns all standard column names
func (t UserProfileTable) Columns() []string {
	return []string{t.ID, t.Attributes, t.CreatedAt, t.UpdatedAt}
}
