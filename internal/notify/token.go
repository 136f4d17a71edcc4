package notify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// UnsubscribeToken derives the opt-out token embedded in every notification
// email. The token is unique per (shipment, subscriber) pair and stateless:
// verification recomputes it from the same inputs.
func UnsubscribeToken(secret, trackingNumber, email string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(trackingNumber))
	mac.Write([]byte{'|'})
	mac.Write([]byte(email))
	return hex.EncodeToString(mac.Sum(nil))[:32]
}
