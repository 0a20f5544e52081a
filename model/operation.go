package model

import "github.com/ivknv/yadisk-go/validation"

// OperationStatus is the status of an asynchronous operation
type OperationStatus struct {
	Status string `json:"status" validate:"required,operation_status"`
}

// Done reports whether the operation reached a terminal status
func (s OperationStatus) Done() bool {
	return s.Status == validation.StatusSuccess || s.Status == validation.StatusFailed
}
