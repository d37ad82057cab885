package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRequestTransition(t *testing.T) {
	tests := []struct {
		name  string
		from  string
		to    string
		valid bool
	}{
		{"pending can be approved", RequestStatusPending, RequestStatusApproved, true},
		{"pending can be rejected", RequestStatusPending, RequestStatusRejected, true},
		{"pending can be cancelled", RequestStatusPending, RequestStatusCancelled, true},
		{"pending cannot skip to fulfilled", RequestStatusPending, RequestStatusFulfilled, false},
		{"approved can be fulfilled", RequestStatusApproved, RequestStatusFulfilled, true},
		{"approved cannot be cancelled", RequestStatusApproved, RequestStatusCancelled, false},
		{"rejected is terminal", RequestStatusRejected, RequestStatusApproved, false},
		{"cancelled is terminal", RequestStatusCancelled, RequestStatusPending, false},
		{"fulfilled is terminal", RequestStatusFulfilled, RequestStatusApproved, false},
		{"unknown source status", "archived", RequestStatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidRequestTransition(tt.from, tt.to))
		})
	}
}

func TestValidateRequestPriority(t *testing.T) {
	assert.True(t, ValidateRequestPriority(RequestPriorityLow))
	assert.True(t, ValidateRequestPriority(RequestPriorityNormal))
	assert.True(t, ValidateRequestPriority(RequestPriorityHigh))
	assert.False(t, ValidateRequestPriority("urgent"))
	assert.False(t, ValidateRequestPriority(""))
}
