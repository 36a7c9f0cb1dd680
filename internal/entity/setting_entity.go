package entity

import "time"

// Setting is an admin-editable override of a business config value.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
