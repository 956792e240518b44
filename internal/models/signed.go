package models

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// SignedState представляет запечатанное игровое состояние:
// шифротекст с IV и детached HMAC поверх iv‖ciphertext.
// Проверка HMAC обязана происходить до любой расшифровки.
type SignedState struct {
	AlgorithmID string `json:"alg"`
	IV          []byte `json:"iv"`
	Ciphertext  []byte `json:"ciphertext"`
	HMAC        []byte `json:"hmac"`
}

// Encode сериализует запечатанное состояние в проводной формат
// base64(iv):base64(ciphertext):base64(hmac):algorithmId.
func (s *SignedState) Encode() string {
	return strings.Join([]string{
		base64.StdEncoding.EncodeToString(s.IV),
		base64.StdEncoding.EncodeToString(s.Ciphertext),
		base64.StdEncoding.EncodeToString(s.HMAC),
		s.AlgorithmID,
	}, ":")
}

// DecodeSignedState разбирает проводной формат запечатанного состояния.
func DecodeSignedState(encoded string) (*SignedState, error) {
	parts := strings.Split(encoded, ":")
	if len(parts) != 4 {
		return nil, fmt.Errorf("signed state must have 4 parts, got %d", len(parts))
	}

	iv, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode iv: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	mac, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("failed to decode hmac: %w", err)
	}

	return &SignedState{
		IV:          iv,
		Ciphertext:  ciphertext,
		HMAC:        mac,
		AlgorithmID: parts[3],
	}, nil
}
