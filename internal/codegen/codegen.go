package codegen

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"
)

// Generator produces ticket codes and their derived QR payloads. The QR
// payload is an HMAC of the code under a server-held secret: verifiable
// by recomputation, not invertible, so a scanned payload proves the code
// was issued by this server.
type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Generator{secret: hashed[:]}
}

// TicketCode returns a code of the form <PREFIX>-<time36>-<SEQ><RAND>.
// The tier category maps to a short prefix; the time and random parts
// make collisions vanishingly unlikely.
func TicketCode(tierCategory string, seq int) string {
	prefix := tierPrefix(tierCategory)
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixNano()/int64(time.Millisecond), 36))
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(1296)) // two base36 chars
	suffix := strings.ToUpper(strconv.FormatInt(randomNum.Int64(), 36))
	return fmt.Sprintf("%s-%s-%d%02s", prefix, ts, seq, suffix)
}

func tierPrefix(tierCategory string) string {
	cleaned := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(tierCategory), " ", ""))
	if cleaned == "" {
		return "GEN"
	}
	if len(cleaned) > 3 {
		cleaned = cleaned[:3]
	}
	if cleaned == "VND" {
		// VND- marks vendor credentials at the gate; an attendee code
		// must never dispatch down the vendor path.
		return "VDR"
	}
	return cleaned
}

// QRPayload derives the keyed hash for a ticket or vendor code.
func (g *Generator) QRPayload(code string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(code))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyQRPayload recomputes the payload for code and compares it in
// constant time.
func (g *Generator) VerifyQRPayload(code, payload string) bool {
	expected, err := base64.URLEncoding.DecodeString(g.QRPayload(code))
	if err != nil {
		return false
	}
	presented, err := base64.URLEncoding.DecodeString(payload)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, presented)
}

// QRImage renders the payload as a PNG for printing or on-screen display.
func QRImage(payload string) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, 256)
}
