package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// secretKey 是一个全局变量，用于存储服务器在启动时生成的32字节密钥。
// 密钥不持久化，服务器重启会使所有会话失效。
var secretKey []byte

// SessionPayload 定义了会话令牌中被签名的数据结构。
// 它会被序列化后写入 rocketgetup_session cookie。
type SessionPayload struct {
	SessionID  string `json:"s"`
	MemberCode string `json:"m"`
	IsAdmin    bool   `json:"a"`
	ExpiresAt  int64  `json:"e"` // Unix秒
}

// GenerateSecretKey 生成一个密码学安全的32字节随机密钥。
func GenerateSecretKey() {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	if err != nil {
		panic("无法生成安全的密钥: " + err.Error())
	}
	secretKey = key
	fmt.Println("HMAC密钥已成功生成。")
}

func sign(payloadBytes []byte) string {
	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// EncodeSessionToken 将payload序列化并附上HMAC-SHA256签名。
// 返回形如 "<base64(payload)>.<base64(signature)>" 的令牌字符串。
func EncodeSessionToken(payload SessionPayload) (string, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", errors.New("无法序列化会话payload")
	}
	encodedPayload := base64.RawURLEncoding.EncodeToString(payloadBytes)
	return encodedPayload + "." + sign(payloadBytes), nil
}

// DecodeSessionToken 验证令牌的签名与有效期，并还原payload。
// 任何一步失败都返回(nil, false)，不区分失败原因，避免向调用方泄露细节。
func DecodeSessionToken(tokenStr string) (*SessionPayload, bool) {
	if len(secretKey) == 0 {
		return nil, false
	}

	parts := strings.SplitN(tokenStr, ".", 2)
	if len(parts) != 2 {
		return nil, false
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, false
	}

	expectedSignature, err := base64.RawURLEncoding.DecodeString(sign(payloadBytes))
	if err != nil {
		return nil, false
	}
	actualSignature, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, false
	}
	// 使用 hmac.Equal 进行时间恒定的比较，防止时序攻击
	if !hmac.Equal(expectedSignature, actualSignature) {
		return nil, false
	}

	var payload SessionPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return nil, false
	}
	if payload.ExpiresAt <= time.Now().Unix() {
		return nil, false
	}
	return &payload, true
}
