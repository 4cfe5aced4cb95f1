package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"positions-console/internal/model"
	"positions-console/pkg/apierror"
)

var parser = jwt.NewParser(jwt.WithJSONNumber())

// Decode reads the token's claims without checking its signature or expiry.
// The remote API stays the only judge of whether a token is valid. The
// header segment must still be JSON naming a known signing algorithm.
func Decode(token string) (model.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.Session{}, fmt.Errorf("%w: empty token", apierror.ErrDecodeFailure)
	}

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return model.Session{}, fmt.Errorf("%w: %v", apierror.ErrDecodeFailure, err)
	}

	var s model.Session

	subject, err := subjectID(claims["sub"])
	if err != nil {
		return model.Session{}, fmt.Errorf("%w: %v", apierror.ErrDecodeFailure, err)
	}
	s.SubjectID = subject

	s.Username, _ = claims["username"].(string)
	s.Role, _ = claims["role"].(string)

	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		s.IssuedAt = iat.Time.UTC()
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time.UTC()
	}

	return s, nil
}

// Display never fails: a token that cannot be decoded shows the guest
// defaults and the failure is only logged.
func Display(token string, log *slog.Logger) model.Session {
	s, err := Decode(token)
	if err != nil {
		if log == nil {
			log = slog.Default()
		}
		log.Warn("token decoding failed", "error", err)
		return model.GuestSession()
	}

	if s.Username == "" {
		s.Username = model.DefaultUsername
	}
	if s.Role == "" {
		s.Role = model.DefaultRole
	}

	return s
}

func subjectID(raw any) (int64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("sub %q is not an integer", v.String())
		}
		return int64(f), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("sub %v is not an integer", v)
		}
		return int64(v), nil
	case string:
		if v == "" {
			return 0, nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("sub %q is not an integer", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("sub has unexpected type %T", raw)
	}
}
