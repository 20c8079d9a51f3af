package models

import "github.com/rs/xid"

// NewPID returns a new public identifier.
func NewPID() string {
	return xid.New().String()
}
