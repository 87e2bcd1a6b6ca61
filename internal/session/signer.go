package session

import (
	_ "crypto/sha256" // registers crypto.SHA256 for hs256
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrBadSignature is returned by Signer.Open when the signature does not
// match the payload. It carries no detail.
var ErrBadSignature = errors.New("bad signature")

// hs256 is the HMAC-SHA256 primitive. Its Verify compares digests with
// hmac.Equal, which runs in constant time.
var hs256 = jwt.SigningMethodHS256

// SignatureLen is the length of a hex signature (SHA-256 digest, 2 chars per byte).
const SignatureLen = 64

// Sign returns the lowercase hex HMAC-SHA256 of payload under secret.
func Sign(payload string, secret []byte) string {
	sum, err := hs256.Sign(payload, secret)
	if err != nil {
		// Unreachable for a non-empty []byte key with crypto/sha256 linked in.
		panic(fmt.Sprintf("session: hmac sign: %v", err))
	}
	return hex.EncodeToString(sum)
}

// Verify reports whether sig is Sign(payload, secret). It fails closed:
// wrong length, invalid or uppercase hex all yield false.
func Verify(payload, sig string, secret []byte) bool {
	if len(sig) != SignatureLen {
		return false
	}
	raw, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	// Reject non-canonical spellings (e.g. uppercase) of the same bytes.
	if hex.EncodeToString(raw) != sig {
		return false
	}
	return hs256.Verify(payload, raw, secret) == nil
}

// Signed is a session as handed to the browser.
type Signed struct {
	Payload   string
	Signature string
}

// Signer binds the process-wide game secret. It is immutable and safe for
// concurrent use.
type Signer struct {
	secret []byte
}

// NewSigner copies secret into a new Signer. An empty secret is rejected.
func NewSigner(secret []byte) (*Signer, error) {
	if len(secret) == 0 {
		return nil, errors.New("session: secret must not be empty")
	}
	return &Signer{secret: append([]byte(nil), secret...)}, nil
}

// Sign signs an encoded payload.
func (s *Signer) Sign(payload string) string { return Sign(payload, s.secret) }

// Verify checks sig against payload.
func (s *Signer) Verify(payload, sig string) bool { return Verify(payload, sig, s.secret) }

// Issue encodes c and signs the result.
func (s *Signer) Issue(c Context) (Signed, error) {
	payload, err := Encode(c)
	if err != nil {
		return Signed{}, err
	}
	return Signed{Payload: payload, Signature: s.Sign(payload)}, nil
}

// Open verifies sig, then decodes payload. The signature is always checked
// first so unsigned input is never parsed.
func (s *Signer) Open(payload, sig string) (Context, error) {
	if !s.Verify(payload, sig) {
		return Context{}, ErrBadSignature
	}
	return Decode(payload)
}
