package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/iudanet/statekeeper/internal/models"
)

// AlgorithmID идентификатор схемы запечатывания.
// Меняется при любой смене шифра, MAC или деривации ключей.
const AlgorithmID = "aes256ctr-hmacsha256/v1"

const (
	// IVSize размер IV для AES-CTR (размер блока AES)
	IVSize = 16
	// keySize размер каждого производного ключа (AES-256 и HMAC-SHA256)
	keySize = 32
	// minSecretSize минимальная длина серверного секрета
	minSecretSize = 32
)

// ErrIntegrity возвращается при несовпадении HMAC, подмене владельца
// или неизвестном алгоритме. Такие ошибки никогда не ретраятся
// автоматически: они означают порчу данных или смену ключа.
var ErrIntegrity = errors.New("integrity check failed")

// Sealer запечатывает и распечатывает игровые состояния.
// Ключи выводятся per-user из серверного секрета, поэтому blob
// одного пользователя невозможно подсунуть под другим userId.
type Sealer struct {
	secret []byte
}

// New создает Sealer из серверного секрета.
func New(secret []byte) (*Sealer, error) {
	if len(secret) < minSecretSize {
		return nil, fmt.Errorf("server secret must be at least %d bytes, got %d", minSecretSize, len(secret))
	}
	s := make([]byte, len(secret))
	copy(s, secret)
	return &Sealer{secret: s}, nil
}

// deriveKeys выводит независимые ключи шифрования и аутентификации
// для пользователя: HKDF-SHA256(secret, salt=userID) с разными info.
func (s *Sealer) deriveKeys(userID string) (encKey, macKey []byte, err error) {
	if userID == "" {
		return nil, nil, fmt.Errorf("user id cannot be empty")
	}

	encKey = make([]byte, keySize)
	r := hkdf.New(sha256.New, s.secret, []byte(userID), []byte("statekeeper/encrypt"))
	if _, err := io.ReadFull(r, encKey); err != nil {
		return nil, nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}

	macKey = make([]byte, keySize)
	r = hkdf.New(sha256.New, s.secret, []byte(userID), []byte("statekeeper/auth"))
	if _, err := io.ReadFull(r, macKey); err != nil {
		return nil, nil, fmt.Errorf("failed to derive mac key: %w", err)
	}

	return encKey, macKey, nil
}

// Sign сериализует, шифрует и подписывает состояние пользователя.
// Формат: AES-256-CTR со свежим случайным IV, HMAC-SHA256 поверх
// iv‖ciphertext (encrypt-then-MAC).
func (s *Sealer) Sign(userID string, state *models.GameState) (*models.SignedState, error) {
	if state == nil {
		return nil, fmt.Errorf("state cannot be nil")
	}
	if state.UserID != userID {
		return nil, fmt.Errorf("state owner %q does not match user %q", state.UserID, userID)
	}

	plaintext, err := state.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize state: %w", err)
	}

	encKey, macKey, err := s.deriveKeys(userID)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	// Свежий случайный IV на каждое запечатывание
	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	ciphertext := make([]byte, len(plaintext))
	cipher.NewCTR(block, iv).XORKeyStream(ciphertext, plaintext)

	mac := hmac.New(sha256.New, macKey)
	mac.Write(iv)
	mac.Write(ciphertext)

	return &models.SignedState{
		IV:          iv,
		Ciphertext:  ciphertext,
		HMAC:        mac.Sum(nil),
		AlgorithmID: AlgorithmID,
	}, nil
}

// Open проверяет целостность и расшифровывает запечатанное состояние.
// HMAC сравнивается в константное время до любой расшифровки; blob с
// неверным тегом отбрасывается целиком. Вложенный userId обязан
// совпадать с userId вызывающего.
func (s *Sealer) Open(userID string, signed *models.SignedState) (*models.GameState, error) {
	if signed == nil {
		return nil, fmt.Errorf("signed state cannot be nil")
	}
	if signed.AlgorithmID != AlgorithmID {
		return nil, fmt.Errorf("unknown algorithm %q: %w", signed.AlgorithmID, ErrIntegrity)
	}
	if len(signed.IV) != IVSize {
		return nil, fmt.Errorf("iv must be %d bytes, got %d: %w", IVSize, len(signed.IV), ErrIntegrity)
	}

	encKey, macKey, err := s.deriveKeys(userID)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, macKey)
	mac.Write(signed.IV)
	mac.Write(signed.Ciphertext)
	if !hmac.Equal(mac.Sum(nil), signed.HMAC) {
		return nil, fmt.Errorf("hmac mismatch: %w", ErrIntegrity)
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	plaintext := make([]byte, len(signed.Ciphertext))
	cipher.NewCTR(block, signed.IV).XORKeyStream(plaintext, signed.Ciphertext)

	state, err := models.UnmarshalGameState(plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize state: %w", err)
	}

	// Защита от подмены blob другого пользователя через surrogate routing
	if state.UserID != userID {
		return nil, fmt.Errorf("state owner %q does not match user %q: %w", state.UserID, userID, ErrIntegrity)
	}

	return state, nil
}
