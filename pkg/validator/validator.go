package validator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	v *validator.Validate
)

func init() {
	v = validator.New()

	// report the form key (schema tag) instead of the Go field name, so the caller can map it back to the input
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"schema", "json", "yaml"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}

		return fld.Name
	})
}

func Validate(i interface{}) error {
	if i == nil {
		return fmt.Errorf("data to validate is nil")
	}

	return v.Struct(i)
}

// FieldErrors maps an input key to the human readable message of its first failing rule.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fmt.Sprintf("%s: %s", k, f[k]))
	}

	return strings.Join(msgs, "; ")
}

// Fields validates a struct and collects every failing field.
// The message for a field is taken from its `msg` struct tag, falling back to a generic one.
// It returns nil FieldErrors and nil error when i is valid,
// and a non-nil error only when i cannot be validated at all (i.e. not a struct).
func Fields(i interface{}) (FieldErrors, error) {
	err := Validate(i)
	if err == nil {
		return nil, nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil, err
	}

	typ := reflect.TypeOf(i)
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	out := FieldErrors{}
	for _, fieldErr := range validationErrs {
		key := fieldErr.Field()
		if _, exist := out[key]; exist {
			continue
		}

		msg := ""
		if sf, ok := typ.FieldByName(fieldErr.StructField()); ok {
			msg = sf.Tag.Get("msg")
		}

		if msg == "" {
			msg = fmt.Sprintf("%s failed on the '%s' rule", key, fieldErr.Tag())
		}

		out[key] = msg
	}

	return out, nil
}
