package cgbdb

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

type sqlStateErr string

func (e sqlStateErr) Error() string    { return "sqlstate " + string(e) }
func (e sqlStateErr) SQLState() string { return string(e) }

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
		{name: "pq_unique", err: &pq.Error{Code: "23505"}, want: true},
		{name: "pq_other", err: &pq.Error{Code: "23503"}, want: false},
		{name: "wrapped_pq", err: fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), want: true},
		{name: "sqlstate", err: sqlStateErr("23505"), want: true},
		{name: "sqlstate_other", err: sqlStateErr("40001"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}
