package config

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoZeroFields(t *testing.T) {
	cfg := Default()

	for _, field := range visit(newVar(*cfg), "Config", false) {
		assert.Fail(t, "zero-value field", field)
	}
}

func TestLoad(t *testing.T) {
	t.Run("overrides", func(t *testing.T) {
		doc := `{"Headers": {"MaxLineLength": 128, "Number": {"Maximal": 3}}, "Strict": true}`
		cfg, err := Load(strings.NewReader(doc))
		require.NoError(t, err)
		require.Equal(t, 128, cfg.Headers.MaxLineLength)
		require.Equal(t, 3, cfg.Headers.Number.Maximal)
		require.True(t, cfg.Strict)
		// untouched fields keep defaults
		require.Equal(t, Default().Headers.Number.Default, cfg.Headers.Number.Default)
		require.Equal(t, Default().Body, cfg.Body)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Load(strings.NewReader(`{"Headers": `))
		require.Error(t, err)
	})
}

type variable struct {
	Type  reflect.Type
	Value reflect.Value
}

func newVar(a any) variable {
	return variable{reflect.TypeOf(a), reflect.ValueOf(a)}
}

func visit(a variable, name string, nullable bool) (fields []string) {
	if a.Type.Kind() == reflect.Struct {
		for field := range a.Value.NumField() {
			v1 := variable{a.Type.Field(field).Type, a.Value.Field(field)}
			fieldname := a.Type.Field(field).Name
			isNullable := a.Type.Field(field).Tag.Get("test") == "nullable"
			fields = append(fields, visit(v1, name+"."+fieldname, isNullable)...)
		}

		return fields
	}

	if a.Value.IsZero() && !nullable {
		return []string{name}
	}

	return nil
}
