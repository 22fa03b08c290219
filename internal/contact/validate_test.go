package contact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateMinimalSubmissionPasses(t *testing.T) {
	t.Parallel()

	res := Validate(Values{Name: "Al", Email: "a@b.com", Message: "1234567890"})
	require.True(t, res.OK(), "errors: %v", res.Errors)
}

func TestValidateReportsEveryFailingField(t *testing.T) {
	t.Parallel()

	res := Validate(Values{Name: "A", Email: "bad", Message: "short"})
	require.False(t, res.OK())
	require.Len(t, res.Errors, 3)

	fields := res.FieldMap()
	require.Contains(t, fields, "name")
	require.Contains(t, fields, "email")
	require.Contains(t, fields, "message")
}

func TestValidatePhone(t *testing.T) {
	t.Parallel()

	base := Values{Name: "Sam", Email: "sam@example.com", Message: "Please call me back."}
	cases := []struct {
		phone string
		ok    bool
	}{
		{"0412 345 678", true},
		{"0412-345-678", true},
		{"+61 7 3410 0200", true},
		{"61412345678", true},
		{"(07) 3410 0200", false},
		{"0512345678", false},
		{"12345", false},
		{"", true},
		{"   ", true},
	}
	for _, tc := range cases {
		v := base
		v.Phone = tc.phone
		res := Validate(v)
		require.Equal(t, tc.ok, res.OK(), "phone %q errors %v", tc.phone, res.Errors)
		if !tc.ok {
			require.Equal(t, []FieldError{{Field: "phone", Message: "Please enter a valid Australian phone number"}}, res.Errors)
		}
	}
}

func TestValidateLengthBoundsCountRunes(t *testing.T) {
	t.Parallel()

	v := Values{Name: "Zoë", Email: "z@example.com", Message: strings.Repeat("é", 10)}
	require.True(t, Validate(v).OK())

	v.Name = strings.Repeat("a", 101)
	v.Message = strings.Repeat("a", 2001)
	res := Validate(v)
	require.Equal(t, "Name must be 100 characters or fewer", res.FieldMap()["name"])
	require.Equal(t, "Message must be 2000 characters or fewer", res.FieldMap()["message"])
}

func TestValidateRawWrongTypesAreFieldErrors(t *testing.T) {
	t.Parallel()

	res := ValidateRaw(map[string]any{
		"name":    42,
		"email":   "a@b.com",
		"message": []any{"x"},
		"phone":   "12345",
	})
	require.False(t, res.OK())
	require.Equal(t, []string{"name", "phone", "message"}, fieldNames(res.Errors))
	require.Equal(t, "Name must be text", res.FieldMap()["name"])
}

func TestValidateRawMissingFields(t *testing.T) {
	t.Parallel()

	res := ValidateRaw(map[string]any{})
	require.Equal(t, []string{"name", "email", "message"}, fieldNames(res.Errors))

	res = ValidateRaw(map[string]any{"name": "Al", "email": "a@b.com", "message": "1234567890", "phone": nil})
	require.True(t, res.OK())
}

func fieldNames(errs []FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}
