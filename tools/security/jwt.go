package security

import (
	goerrors "errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Verification failure reasons. The gateway logs which one refused a
// connection; clients only ever see the closed socket.
var (
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("token malformed or invalid")
	ErrTokenNoPlayer = errors.New("token missing player_id claim")
)

// Options controls signing parameters. HS256 only; the secret comes
// from SECRET_KEY at startup.
type Options struct {
	Secret []byte
	TTL    time.Duration
}

func DefaultOptions(secret []byte) Options {
	return Options{Secret: secret, TTL: 24 * time.Hour}
}

// Service issues and verifies player identity tokens.
type Service struct {
	opts Options
}

func NewService(secret []byte) *Service {
	return &Service{opts: DefaultOptions(secret)}
}

func NewServiceWithOptions(opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Service{opts: opts}
}

// Issue signs a token carrying the player id and a fixed expiry.
func (s *Service) Issue(playerID int64) (token string, expireAt time.Time, err error) {
	now := time.Now()
	exp := now.Add(s.opts.TTL)

	claims := jwtlib.MapClaims{
		"player_id": playerID,
		"iat":       now.Unix(),
		"exp":       exp.Unix(),
	}
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.opts.Secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign token")
	}
	return signed, exp, nil
}

// Verify parses and validates a token, returning the player id claim.
// Failures collapse onto the three sentinel reasons above.
func (s *Service) Verify(token string) (int64, error) {
	parsed, err := jwtlib.Parse(token, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected alg: %v", t.Header["alg"])
		}
		return s.opts.Secret, nil
	})
	if err != nil {
		if goerrors.Is(err, jwtlib.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}
	if !parsed.Valid {
		return 0, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return 0, ErrTokenInvalid
	}
	raw, ok := claims["player_id"]
	if !ok {
		return 0, ErrTokenNoPlayer
	}
	// encoding/json decodes JSON numbers as float64
	switch v := raw.(type) {
	case float64:
		if v <= 0 {
			return 0, ErrTokenNoPlayer
		}
		return int64(v), nil
	default:
		return 0, ErrTokenNoPlayer
	}
}
