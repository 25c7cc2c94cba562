// Package auth implements wallet challenge/response authentication and
// stateless session credentials.
package auth

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mr-tron/base58"

	"github.com/soltodo/service-layer/internal/errors"
)

// challengeFormat is the exact message a wallet signs. It must match the
// client byte-for-byte.
const challengeFormat = "Sign in to Solana Todo App: %d"

// maxTimestampSkew bounds |now - timestamp| for authentication requests.
const maxTimestampSkew = 86400 * time.Second

// AuthRequest is the challenge/response authentication payload.
type AuthRequest struct {
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
}

// AuthResponse carries the issued session credential.
type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	PublicKey string `json:"public_key"`
}

// Service issues and verifies session credentials. It holds no per-session
// state; tokens are self-contained and expire on their own.
type Service struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// New creates an auth service signing credentials with secret, valid for
// expiry.
func New(secret string, expiry time.Duration) *Service {
	if expiry <= 0 {
		expiry = maxTimestampSkew
	}
	return &Service{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// VerifySignature checks that signature over message was produced by the
// holder of publicKey. Malformed inputs fail with InvalidArgument.
func (s *Service) VerifySignature(publicKey, message, signature string) (bool, error) {
	pubkey, err := solana.PublicKeyFromBase58(publicKey)
	if err != nil {
		return false, errors.InvalidArgument(fmt.Sprintf("invalid public key: %v", err))
	}

	sigBytes, err := base58.Decode(signature)
	if err != nil {
		return false, errors.InvalidArgument(fmt.Sprintf("invalid signature format: %v", err))
	}
	if len(sigBytes) != 64 {
		return false, errors.InvalidArgument("invalid signature length")
	}

	var sig solana.Signature
	copy(sig[:], sigBytes)

	return sig.Verify(pubkey, []byte(message)), nil
}

// Authenticate validates a signed timestamp challenge and issues a session
// credential for the wallet.
func (s *Service) Authenticate(req AuthRequest) (*AuthResponse, error) {
	now := s.now()

	diff := now.Unix() - req.Timestamp
	if diff < 0 {
		diff = -diff
	}
	if diff > int64(maxTimestampSkew/time.Second) {
		return nil, errors.Expired("authentication request expired")
	}

	message := fmt.Sprintf(challengeFormat, req.Timestamp)

	valid, err := s.VerifySignature(req.PublicKey, message, req.Signature)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, errors.InvalidSignature("invalid signature")
	}

	claims := jwt.RegisteredClaims{
		Subject:   req.PublicKey,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, errors.Internal("failed to sign credential", err)
	}

	return &AuthResponse{
		Token:     token,
		ExpiresIn: int64(s.expiry / time.Second),
		PublicKey: req.PublicKey,
	}, nil
}

// VerifyToken validates a presented credential and returns the subject
// public key. Signature and expiry are checked in one step; any failure
// yields InvalidCredential.
func (s *Service) VerifyToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", errors.InvalidCredential(err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errors.InvalidCredential(nil)
	}

	return claims.Subject, nil
}
