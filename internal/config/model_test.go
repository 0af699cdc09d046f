package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_AreValid(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *Model)
		want   string
	}{
		{"bad qualifier", func(m *Model) { m.Qualifier = "sig-rt" }, `qualifier "sig-rt" is not a Go identifier`},
		{"empty qualifier", func(m *Model) { m.Qualifier = "" }, "is not a Go identifier"},
		{"empty import", func(m *Model) { m.ImportPath = "" }, "import_path must not be empty"},
		{"suffix without .go", func(m *Model) { m.Suffix = "_gen" }, "must end in .go"},
		{"test suffix", func(m *Model) { m.Suffix = "_gen_test.go" }, "must not produce test files"},
		{"bare suffix", func(m *Model) { m.Suffix = ".go" }, "would overwrite the sources"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := Defaults()
			tc.mutate(m)

			err := m.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
