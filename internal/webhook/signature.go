package webhook

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
)

// SignatureHeader — заголовок с подписью тела уведомления.
const SignatureHeader = "X-Payment-Sha1-Hash"

// verifySignature сверяет HMAC-SHA1 от сырого тела с подписью провайдера.
// Сравнение константное по времени, проверка выполняется до разбора тела.
func verifySignature(secret, body []byte, signature string) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha1.New, secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
