package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Envelope is one encrypted field value: a random IV, the GCM authentication tag and the
// ciphertext, tagged with the format version.
//
// Stored form: "cvenc:" + base64(version | iv | tag | ciphertext).
type Envelope struct {
	Version    byte
	IV         []byte
	Tag        []byte
	Ciphertext []byte
}

// AAD returns the additional authenticated data bound to this envelope.
func (e *Envelope) AAD() []byte {
	return []byte{e.Version}
}

// Encode renders the envelope in its stored string form.
func (e *Envelope) Encode() string {
	buf := make([]byte, 0, 1+len(e.IV)+len(e.Tag)+len(e.Ciphertext))
	buf = append(buf, e.Version)
	buf = append(buf, e.IV...)
	buf = append(buf, e.Tag...)
	buf = append(buf, e.Ciphertext...)
	return EnvelopePrefix + base64.StdEncoding.EncodeToString(buf)
}

// IsEnvelope reports whether stored carries the envelope prefix. Values that do are
// always parsed as envelopes.
func IsEnvelope(stored string) bool {
	return strings.HasPrefix(stored, EnvelopePrefix)
}

// ParseEnvelope decodes a stored envelope. Any decoding problem, a short payload or an
// unknown version yields ErrDecryptionIntegrity.
func ParseEnvelope(stored string) (*Envelope, error) {
	if !IsEnvelope(stored) {
		return nil, fmt.Errorf("%w: missing envelope prefix", ErrDecryptionIntegrity)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, EnvelopePrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid envelope encoding", ErrDecryptionIntegrity)
	}
	if len(raw) < 1+NonceSize+TagSize {
		return nil, fmt.Errorf("%w: envelope too short", ErrDecryptionIntegrity)
	}
	if raw[0] != EnvelopeV1 {
		return nil, fmt.Errorf("%w: unsupported envelope version %d", ErrDecryptionIntegrity, raw[0])
	}

	return &Envelope{
		Version:    raw[0],
		IV:         raw[1 : 1+NonceSize],
		Tag:        raw[1+NonceSize : 1+NonceSize+TagSize],
		Ciphertext: raw[1+NonceSize+TagSize:],
	}, nil
}
