package validate

import (
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequired(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "modern-light", false},
		{"valid with spaces", "my theme", false},
		{"empty string", "", true},
		{"only spaces", "   ", true},
		{"only tabs", "\t\t", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Required(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "Required(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		})
	}
}

func TestHTTPURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"http", "http://localhost:8000", false},
		{"https with path", "https://kpi.example.com/api", false},
		{"empty", "", true},
		{"no scheme", "localhost:8000", true},
		{"ftp", "ftp://files.example.com", true},
		{"no host", "http://", true},
		{"garbage", "://bad", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HTTPURL(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "HTTPURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		})
	}
}

func TestOneOf(t *testing.T) {
	v := OneOf("kerberos", "mock")
	assert.NoError(t, v("mock"))
	err := v("ldap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kerberos, mock")
}

func TestNonNegative(t *testing.T) {
	assert.NoError(t, NonNegative(0))
	assert.NoError(t, NonNegative(time.Second))
	assert.Error(t, NonNegative(-time.Second))
}

func TestAtLeast(t *testing.T) {
	v := AtLeast(1)
	assert.NoError(t, v(1))
	assert.Error(t, v(0))
}

func TestURLField(t *testing.T) {
	err := URLField("api_url", "nope")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "api_url", fieldErrs[0].Field)
}
