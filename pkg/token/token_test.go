package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundtrip(t *testing.T) {
	GenerateSecretKey()

	payload := SessionPayload{
		SessionID:  "sid-1",
		MemberCode: "A001",
		IsAdmin:    true,
		ExpiresAt:  time.Now().Add(time.Hour).Unix(),
	}

	tokenStr, err := EncodeSessionToken(payload)
	require.NoError(t, err)
	require.Contains(t, tokenStr, ".")

	decoded, ok := DecodeSessionToken(tokenStr)
	require.True(t, ok)
	require.Equal(t, payload, *decoded)
}

func TestDecodeRejectsTamperedToken(t *testing.T) {
	GenerateSecretKey()

	tokenStr, err := EncodeSessionToken(SessionPayload{
		SessionID:  "sid-2",
		MemberCode: "A001",
		ExpiresAt:  time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	// 篡改payload的最后一个字符
	parts := strings.SplitN(tokenStr, ".", 2)
	last := parts[0][len(parts[0])-1]
	replacement := byte('A')
	if last == 'A' {
		replacement = 'B'
	}
	tampered := parts[0][:len(parts[0])-1] + string(replacement) + "." + parts[1]
	_, ok := DecodeSessionToken(tampered)
	require.False(t, ok)

	// 缺少签名部分
	_, ok = DecodeSessionToken(parts[0])
	require.False(t, ok)

	// 完全无效的输入
	_, ok = DecodeSessionToken("garbage")
	require.False(t, ok)
}

func TestDecodeRejectsExpiredToken(t *testing.T) {
	GenerateSecretKey()

	tokenStr, err := EncodeSessionToken(SessionPayload{
		SessionID:  "sid-3",
		MemberCode: "A001",
		ExpiresAt:  time.Now().Add(-time.Minute).Unix(),
	})
	require.NoError(t, err)

	_, ok := DecodeSessionToken(tokenStr)
	require.False(t, ok)
}

func TestDecodeRejectsTokenFromOldKey(t *testing.T) {
	GenerateSecretKey()
	tokenStr, err := EncodeSessionToken(SessionPayload{
		SessionID:  "sid-4",
		MemberCode: "A001",
		ExpiresAt:  time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	// 密钥轮换后旧令牌全部失效
	GenerateSecretKey()
	_, ok := DecodeSessionToken(tokenStr)
	require.False(t, ok)
}
