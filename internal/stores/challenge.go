package stores

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adverto/adauth/internal"
	"github.com/adverto/adauth/internal/cache"
)

var (
	ErrChallengeNotFound        = errors.New("challenge record not found")
	ErrChallengeCodeMismatch    = errors.New("challenge code mismatch")
	ErrChallengeExpired         = errors.New("challenge record expired")
	ErrChallengePurposeMismatch = errors.New("challenge purpose mismatch")
)

const (
	consumeStatusNotFound        = "not_found"
	consumeStatusExpired         = "expired"
	consumeStatusPurposeMismatch = "purpose_mismatch"
	consumeStatusCodeMismatch    = "code_mismatch"
)

// consumeChallengeLua atomically performs GET→validate→DEL on a
// challenge record so two concurrent consumers can never both succeed.
// KEYS[1] = record key
// ARGV[1] = provided code
// ARGV[2] = expected purpose
// ARGV[3] = current unix timestamp (int string)
//
// Returns:
//
//	record bytes on success
//	error string: "not_found", "expired", "purpose_mismatch", "code_mismatch"
//
// A code mismatch leaves the record intact; every other rejection
// deletes it.
var consumeChallengeLua = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
  return {err='not_found'}
end

local ok, record = pcall(cjson.decode, data)
if not ok or type(record) ~= 'table' then
  redis.call('DEL', KEYS[1])
  return {err='not_found'}
end

if tonumber(ARGV[3]) > tonumber(record['expires_at']) then
  redis.call('DEL', KEYS[1])
  return {err='expired'}
end

if record['payload']['purpose'] ~= ARGV[2] then
  redis.call('DEL', KEYS[1])
  return {err='purpose_mismatch'}
end

if record['code'] ~= ARGV[1] then
  return {err='code_mismatch'}
end

redis.call('DEL', KEYS[1])
return data
`)

// Purpose discriminates the tagged challenge payload.
type Purpose string

const (
	PurposeRegistration Purpose = "registration"
	PurposeLogin        Purpose = "login"
	PurposeEmailChange  Purpose = "email_change"
)

// Payload is the purpose-specific cargo of a challenge. Exactly the
// fields for the tagged purpose are set; the rest stay empty.
type Payload struct {
	Purpose      Purpose `json:"purpose"`
	Name         string  `json:"name,omitempty"`
	PasswordHash string  `json:"password_hash,omitempty"`
	NewEmail     string  `json:"new_email,omitempty"`
}

// challengeRecord is the stored shape. ExpiresAt duplicates the store
// TTL so lazily-purged backends still reject stale entries.
type challengeRecord struct {
	Code      string  `json:"code"`
	ExpiresAt int64   `json:"expires_at"`
	Payload   Payload `json:"payload"`
}

// ChallengeStore creates, verifies, and consumes verification challenges.
// At most one live challenge exists per key: Issue unconditionally
// replaces, Consume deletes on success.
type ChallengeStore struct {
	cache  *cache.Store
	prefix string
	digits int
	now    func() time.Time
}

func NewChallengeStore(c *cache.Store, prefix string, digits int) *ChallengeStore {
	if prefix == "" {
		prefix = "avc"
	}

	return &ChallengeStore{
		cache:  c,
		prefix: prefix,
		digits: digits,
		now:    time.Now,
	}
}

func (s *ChallengeStore) key(k string) string {
	return s.prefix + ":" + k
}

// Issue generates a fresh code and stores {code, expiry, payload} under
// key, overwriting any prior unconsumed challenge for that key.
func (s *ChallengeStore) Issue(ctx context.Context, key string, payload Payload, ttl time.Duration) (string, error) {
	code, err := internal.NewCode(s.digits)
	if err != nil {
		return "", err
	}

	record := challengeRecord{
		Code:      code,
		ExpiresAt: s.now().Add(ttl).Unix(),
		Payload:   payload,
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		return "", err
	}

	if err := s.cache.Set(ctx, s.key(key), encoded, ttl); err != nil {
		return "", err
	}

	return code, nil
}

// Consume validates code against the challenge for key and deletes the
// record on success, in one server-side operation. A mismatching code
// leaves the challenge intact so the correct code can still be supplied;
// a matching code on a stale record reports expiry; a wrong purpose
// destroys the record and reports it absent. At most one caller ever
// receives the payload.
func (s *ChallengeStore) Consume(ctx context.Context, key, code string, purpose Purpose) (Payload, error) {
	storeKey := s.key(key)

	result, err := s.cache.RunScript(ctx, consumeChallengeLua, storeKey, code, string(purpose), s.now().Unix())
	if err != nil {
		if errors.Is(err, cache.ErrBackendUnavailable) {
			return s.consumeFallback(storeKey, code, purpose)
		}
		switch err.Error() {
		case consumeStatusNotFound:
			// Absent from the primary; the challenge may live in the
			// degraded map if it was issued during an outage.
			return s.consumeFallback(storeKey, code, purpose)
		case consumeStatusExpired:
			return Payload{}, ErrChallengeExpired
		case consumeStatusPurposeMismatch:
			return Payload{}, ErrChallengePurposeMismatch
		case consumeStatusCodeMismatch:
			return Payload{}, ErrChallengeCodeMismatch
		default:
			return Payload{}, err
		}
	}

	data, ok := result.(string)
	if !ok {
		return Payload{}, fmt.Errorf("challenge consume: unexpected script result type %T", result)
	}

	var record challengeRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return Payload{}, ErrChallengeNotFound
	}

	// Lua string comparison is not constant-time; re-check in Go.
	if subtle.ConstantTimeCompare([]byte(code), []byte(record.Code)) != 1 {
		return Payload{}, ErrChallengeCodeMismatch
	}

	return record.Payload, nil
}

// consumeFallback is the degraded-mode consume: the same validate-then-
// delete decision, taken inside the fallback map's critical section.
func (s *ChallengeStore) consumeFallback(storeKey, code string, purpose Purpose) (Payload, error) {
	var (
		payload Payload
		outErr  error
	)

	s.cache.MutateFallback(storeKey, func(value []byte, ok bool) bool {
		if !ok {
			outErr = ErrChallengeNotFound
			return false
		}

		var record challengeRecord
		if err := json.Unmarshal(value, &record); err != nil {
			outErr = ErrChallengeNotFound
			return true
		}
		if s.now().Unix() > record.ExpiresAt {
			outErr = ErrChallengeExpired
			return true
		}
		if record.Payload.Purpose != purpose {
			outErr = ErrChallengePurposeMismatch
			return true
		}
		if subtle.ConstantTimeCompare([]byte(code), []byte(record.Code)) != 1 {
			outErr = ErrChallengeCodeMismatch
			return false
		}

		payload = record.Payload
		return true
	})

	if outErr != nil {
		return Payload{}, outErr
	}
	return payload, nil
}
