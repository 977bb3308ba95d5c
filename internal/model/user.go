// Package model defines data structures for the relay service.
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Extras holds open-ended profile fields beyond the fixed columns. It is
// persisted as a single JSONB column.
type Extras map[string]any

// Value implements driver.Valuer.
func (e Extras) Value() (driver.Value, error) {
	if e == nil {
		return nil, nil
	}
	return json.Marshal(e)
}

// Scan implements sql.Scanner.
func (e *Extras) Scan(src any) error {
	if src == nil {
		*e = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, e)
	case string:
		return json.Unmarshal([]byte(v), e)
	default:
		return fmt.Errorf("cannot scan %T into Extras", src)
	}
}

// User is an authoritative profile record. Phone is the unique identifier;
// there is at most one record per phone and records are never deleted.
type User struct {
	Phone     string    `gorm:"primaryKey;size:32" json:"phone"`
	Name      string    `gorm:"size:256" json:"name,omitempty"`
	Extras    Extras    `gorm:"type:jsonb" json:"extras,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the GORM table name.
func (User) TableName() string {
	return "users"
}

// Source tags the provenance of a lookup result.
type Source string

const (
	// SourceCache means the record came from the volatile store.
	SourceCache Source = "cache"
	// SourceDurable means the record came from the durable store.
	SourceDurable Source = "durable"
)

// UpsertUserRequest is the request to create or update a user record.
type UpsertUserRequest struct {
	Phone  string `json:"phone"`
	Name   string `json:"name,omitempty"`
	Extras Extras `json:"extras,omitempty"`
}

// LookupUserResponse is the response envelope for a user lookup. Data is
// null when the phone is unknown to both stores.
type LookupUserResponse struct {
	Data   *User  `json:"data"`
	Source Source `json:"source,omitempty"`
}
