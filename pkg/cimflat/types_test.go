package cimflat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAuthMethod(t *testing.T) {
	tests := []struct {
		name string
		want AuthMethod
	}{
		{"", AuthMethodStandard},
		{"standard", AuthMethodStandard},
		{"AWS-IAM", AuthMethodAWSIAM},
		{" google-iam ", AuthMethodGoogleIAM},
		{"azure-entra", AuthMethodAzureEntraID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAuthMethod(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestParseAuthMethod_Unknown(t *testing.T) {
	_, err := ParseAuthMethod("kerberos")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, ExitConfigError, ExitCodeForError(err))
}

func TestAuthMethod_String(t *testing.T) {
	assert.Equal(t, "AWS IAM", AuthMethodAWSIAM.String())
	assert.Equal(t, "Unknown(42)", AuthMethod(42).String())
	assert.False(t, AuthMethod(42).IsValid())
}
