package service

import (
	"github.com/futureaiitofficial/prosumeai-sub005/internal/domain"
)

// Billing details errors - use domain.EINVALID
var (
	ErrUserIDRequired = domain.Errorf(domain.EINVALID, "billing_details.save", "User ID is required")
)

// Client-facing messages for failures wrapped as domain.EINTERNAL
const (
	msgValidateFailed = "Could not validate address"
	msgSaveFailed     = "Could not save billing details"
)
