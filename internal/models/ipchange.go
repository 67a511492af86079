package models

import (
	"gorm.io/gorm"
)

type NotifyStatus string

const (
	NotifyStatusSent   NotifyStatus = "SENT"
	NotifyStatusFailed NotifyStatus = "FAILED"
)

// IPChange is one detected change of the public address.
type IPChange struct {
	gorm.Model
	OldIP        string       `json:"old_ip"`
	NewIP        string       `json:"new_ip" gorm:"index"`
	NotifyStatus NotifyStatus `json:"notify_status"`
	NotifyError  string       `json:"notify_error,omitempty"`
}
