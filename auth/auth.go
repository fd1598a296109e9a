// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidState = errors.New("invalid oauth state")
	ErrExpiredState = errors.New("oauth state expired")
)

// StateTTL is how long an authorization URL stays usable.
const StateTTL = 10 * time.Minute

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func sign(payload string, key []byte) string {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(payload))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner states
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// SignState creates an OAuth state value: a random nonce and its issue time,
// authenticated with HMAC-SHA256. It can be verified without storing it.
func SignState(key []byte, now time.Time) (string, error) {
	nonce, err := GenerateID(12)
	if err != nil {
		return "", err
	}
	payload := nonce + "." + strconv.FormatInt(now.Unix(), 10)
	return payload + "." + sign(payload, key), nil
}

// VerifyState checks a state produced by SignState and that it is younger
// than StateTTL.
func VerifyState(state string, key []byte, now time.Time) error {
	parts := strings.Split(state, ".")
	if len(parts) != 3 {
		return ErrInvalidState
	}
	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(sign(payload, key))) {
		return ErrInvalidState
	}

	issued, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return ErrInvalidState
	}
	if now.Sub(time.Unix(issued, 0)) > StateTTL {
		return ErrExpiredState
	}
	return nil
}
