package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	dErrors "veriport/pkg/domain-errors"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("test-signing-key", "veriport")

	token, err := svc.GenerateToken("ops@example.com", time.Minute)
	require.NoError(t, err)

	subject, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "ops@example.com", subject)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	token, err := NewService("key-a", "veriport").GenerateToken("ops@example.com", time.Minute)
	require.NoError(t, err)

	_, err = NewService("key-b", "veriport").ValidateToken(token)
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := NewService("test-signing-key", "veriport")

	token, err := svc.GenerateToken("ops@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
