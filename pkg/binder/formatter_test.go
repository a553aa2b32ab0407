package binder

import (
	"reflect"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/stretchr/testify/assert"
)

type mockFieldError struct {
	tag   string
	field string
	param string
	kind  reflect.Kind
}

func (e *mockFieldError) Error() string           { return "Mock Field Error" }
func (e *mockFieldError) Tag() string             { return e.tag }
func (e *mockFieldError) ActualTag() string       { return e.tag }
func (e *mockFieldError) Namespace() string       { return "" }
func (e *mockFieldError) StructNamespace() string { return "" }
func (e *mockFieldError) Field() string           { return e.field }
func (e *mockFieldError) StructField() string     { return "" }
func (e *mockFieldError) Value() interface{}      { return "" }
func (e *mockFieldError) Param() string           { return e.param }
func (e *mockFieldError) Kind() reflect.Kind {
	if e.kind == 0 {
		return reflect.String
	}
	return e.kind
}
func (e *mockFieldError) Type() reflect.Type               { return reflect.TypeOf("") }
func (e *mockFieldError) Translate(_ ut.Translator) string { return "" }

func TestFormatValidationError(t *testing.T) {
	cases := []struct {
		tag   string
		param string
		kind  reflect.Kind
		msg   string
	}{
		{gte, "0", reflect.Int, `"limit" must be greater than or equal to 0`},
		{mx, "20", reflect.String, `"limit" length must be less than or equal to 20 characters`},
		{mx, "1", reflect.String, `"limit" length must be less than or equal to 1 character`},
		{mx, "100", reflect.Int, `"limit" must be less than or equal to 100`},
		{mn, "1", reflect.Int, `"limit" must be greater than or equal to 1`},
		{mn, "2", reflect.Slice, `"limit" length must be greater than or equal to 2 elements`},
		{oneof, "info warn error", 0, `"limit" must be one of the following: "info", "warn", "error"`},
		{importStatus, "", 0, `"limit" must be a valid import status`},
		{required, "", 0, `"limit" is required`},
		{"foo", "", 0, `"limit" failed "foo" validation`},
	}

	for _, tt := range cases {
		err := mockFieldError{tag: tt.tag, field: "limit", param: tt.param, kind: tt.kind}
		assert.Equal(t, tt.msg, formatValidationError(&err))
	}
}
