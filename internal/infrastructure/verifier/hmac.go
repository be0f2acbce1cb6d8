package verifier

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"custodia.io/internal/domain/entity"
	"custodia.io/internal/domain/port"
	"custodia.io/internal/infrastructure/logger"
)

const maxTrackedNonces = 10000

// nonceStore tracks seen nonces so a signed request cannot be replayed
// within the tolerance window. Replay protection is what keeps a
// captured withdrawal request from executing twice.
type nonceStore struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
}

func newNonceStore(ttl time.Duration) *nonceStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &nonceStore{
		seen: make(map[string]time.Time),
		ttl:  ttl,
	}
}

// remember records the nonce, reporting false if it was already used
// inside the TTL window. The store never holds more than
// maxTrackedNonces entries: expired nonces go first, then the oldest
// live ones, so a burst of unique nonces cannot grow it without bound.
func (s *nonceStore) remember(nonce string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if at, ok := s.seen[nonce]; ok && now.Sub(at) <= s.ttl {
		return false
	}

	if len(s.seen) >= maxTrackedNonces {
		s.evict(now)
		for len(s.seen) >= maxTrackedNonces {
			s.evictOldest()
		}
	}
	s.seen[nonce] = now
	return true
}

func (s *nonceStore) evict(now time.Time) {
	for nonce, at := range s.seen {
		if now.Sub(at) > s.ttl {
			delete(s.seen, nonce)
		}
	}
}

// evictOldest drops the single oldest entry. Only called when TTL
// eviction alone cannot keep the store under its cap.
func (s *nonceStore) evictOldest() {
	var (
		oldest   string
		oldestAt time.Time
	)
	for nonce, at := range s.seen {
		if oldest == "" || at.Before(oldestAt) {
			oldest = nonce
			oldestAt = at
		}
	}
	if oldest != "" {
		delete(s.seen, oldest)
	}
}

// HMACVerifier implements the CallVerifier port. The signature binds
// the timestamp, nonce, caller account and raw body:
//
//	X-Timestamp + "\n" + X-Nonce + "\n" + X-Caller + "\n" + body
//
// so a valid signature authenticates the X-Caller header as the
// calling account.
type HMACVerifier struct {
	secret    []byte
	tolerance time.Duration
	nonces    *nonceStore
	logger    logger.Logger
}

// NewHMACVerifier creates a verifier for the shared secret
func NewHMACVerifier(secret string, tolerance time.Duration, log logger.Logger) port.CallVerifier {
	return &HMACVerifier{
		secret:    []byte(secret),
		tolerance: tolerance,
		nonces:    newNonceStore(time.Hour),
		logger:    log.WithComponent("verifier"),
	}
}

// Verify validates the request headers against the body and returns
// the authenticated caller account.
func (v *HMACVerifier) Verify(ctx context.Context, r *http.Request, body []byte) (entity.Account, error) {
	timestampStr := r.Header.Get("X-Timestamp")
	nonce := r.Header.Get("X-Nonce")
	caller := r.Header.Get("X-Caller")
	signature := r.Header.Get("X-Signature")

	if timestampStr == "" {
		return "", fmt.Errorf("missing X-Timestamp header")
	}
	if nonce == "" {
		return "", fmt.Errorf("missing X-Nonce header")
	}
	if caller == "" {
		return "", fmt.Errorf("missing X-Caller header")
	}
	if signature == "" {
		return "", fmt.Errorf("missing X-Signature header")
	}

	timestamp, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid X-Timestamp format: %w", err)
	}

	drift := time.Since(time.Unix(timestamp, 0))
	if drift < 0 {
		drift = -drift
	}
	if drift > v.tolerance {
		v.logger.LogWarning(ctx, "Request timestamp out of tolerance",
			"timestamp", timestamp,
			"drift_seconds", drift.Seconds(),
			"tolerance_seconds", v.tolerance.Seconds())
		return "", fmt.Errorf("timestamp out of tolerance: drift is %v, max allowed is %v", drift, v.tolerance)
	}

	expected := Sign(v.secret, timestampStr, nonce, caller, body)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		v.logger.LogWarning(ctx, "Invalid signature", "caller", caller)
		return "", fmt.Errorf("invalid signature")
	}

	// Burn the nonce only after the signature checks out, so a bad
	// request cannot block a later valid one.
	if !v.nonces.remember(nonce) {
		v.logger.LogWarning(ctx, "Duplicate nonce detected",
			"nonce", nonce,
			"caller", caller)
		return "", fmt.Errorf("duplicate nonce: possible replayed request")
	}

	return entity.Account(caller), nil
}

// Sign computes the hex-encoded HMAC-SHA256 signature for a request.
// Exported for clients and tests.
func Sign(secret []byte, timestamp, nonce, caller string, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(timestamp))
	mac.Write([]byte("\n"))
	mac.Write([]byte(nonce))
	mac.Write([]byte("\n"))
	mac.Write([]byte(caller))
	mac.Write([]byte("\n"))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
