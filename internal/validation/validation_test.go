package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inner struct {
	Name string `validate:"required"`
}

type outer struct {
	Mode  string `validate:"oneof=fast slow"`
	Count int    `validate:"min=1"`
	Inner inner
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		wantErr string
	}{
		{"valid", &outer{Mode: "fast", Count: 1, Inner: inner{Name: "x"}}, ""},
		{"one field", &outer{Mode: "fast", Count: 0, Inner: inner{Name: "x"}}, "invalid thing: outer.Count failed min"},
		{
			"every field listed",
			&outer{Mode: "medium", Count: 1},
			"invalid thing: outer.Mode failed oneof; outer.Inner.Name failed required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct("thing", tt.value)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestStructRejectsNonStruct(t *testing.T) {
	err := Struct("thing", 42)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "invalid thing")
}
