package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending to approved", ApplicationPending, ApplicationApproved, true},
		{"pending to rejected", ApplicationPending, ApplicationRejected, true},
		{"pending to pending", ApplicationPending, ApplicationPending, false},
		{"approved is terminal", ApplicationApproved, ApplicationRejected, false},
		{"rejected is terminal", ApplicationRejected, ApplicationApproved, false},
		{"unknown target", ApplicationPending, "withdrawn", false},
		{"unknown source", "draft", ApplicationApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidTransition(tt.from, tt.to))
		})
	}
}
