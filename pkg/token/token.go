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
// 密钥只存在于内存中，服务重启后所有旧会话自动失效。
var secretKey []byte

// SessionPayload 定义了需要被签名的会话数据结构。
// 它在登录响应中被序列化，在后续请求的Authorization头中被带回。
type SessionPayload struct {
	Email     string `json:"e"`
	IssuedAt  int64  `json:"i"`
	ExpiresAt int64  `json:"x"`
}

// SessionTTL 是会话令牌的有效期。
const SessionTTL = 30 * 24 * time.Hour

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

// NewSessionToken 为一个账户邮箱签发会话令牌。
// 令牌格式为 base64(payload) + "." + base64(hmac)。
func NewSessionToken(email string, now time.Time) (string, error) {
	payload := SessionPayload{
		Email:     email,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(SessionTTL).Unix(),
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", errors.New("无法序列化会话payload")
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	signature := mac.Sum(nil)

	return base64.RawURLEncoding.EncodeToString(payloadBytes) +
		"." + base64.RawURLEncoding.EncodeToString(signature), nil
}

// ParseSessionToken 验证令牌的签名和有效期，返回其中的账户邮箱。
func ParseSessionToken(tokenStr string, now time.Time) (string, error) {
	parts := strings.SplitN(tokenStr, ".", 2)
	if len(parts) != 2 {
		return "", errors.New("令牌格式不正确")
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", errors.New("令牌payload解码失败")
	}
	actualSignature, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", errors.New("令牌签名解码失败")
	}

	// 重新计算预期的签名，并使用 hmac.Equal 进行时间恒定的比较，防止时序攻击
	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	expectedSignature := mac.Sum(nil)
	if !hmac.Equal(expectedSignature, actualSignature) {
		return "", errors.New("令牌签名无效")
	}

	var payload SessionPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return "", errors.New("令牌payload解析失败")
	}
	if payload.ExpiresAt < now.Unix() {
		return "", errors.New("令牌已过期")
	}
	return payload.Email, nil
}
