package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Count *int   `json:"count" validate:"required,gte=0"`
	Kind  string `json:"kind,omitempty" validate:"omitempty,oneof=a b"`
}

func intPtr(v int) *int { return &v }

func TestStructReportsFirstFieldByJSONName(t *testing.T) {
	err := Struct(sample{Email: "x@example.com", Count: intPtr(1)})

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "name", verr.Field)
	assert.Equal(t, "required", verr.Reason)
}

func TestStructNilPointerIsRequired(t *testing.T) {
	err := Struct(sample{Name: "n", Email: "x@example.com"})

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "count", verr.Field)
	assert.Equal(t, "required", verr.Reason)
}

func TestStructZeroPointerIsPresent(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: "n", Email: "x@example.com", Count: intPtr(0)}))
}

func TestStructReasons(t *testing.T) {
	cases := []struct {
		in     sample
		field  string
		reason string
	}{
		{sample{Name: "n", Email: "nope", Count: intPtr(0)}, "email", "must be a valid email"},
		{sample{Name: "n", Email: "x@example.com", Count: intPtr(-1)}, "count", "must be >= 0"},
		{sample{Name: "n", Email: "x@example.com", Count: intPtr(0), Kind: "c"}, "kind", "must be one of a b"},
	}
	for _, tc := range cases {
		err := Struct(tc.in)
		var verr *Error
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, tc.field, verr.Field)
		assert.Equal(t, tc.reason, verr.Reason)
	}
}
