package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/pkg/tokens"
)

var ErrInvalidSnapshot = errors.New("invalid session snapshot")

// ValidateSnapshot checks a persisted session before it is trusted. Opaque
// tokens are accepted as-is; JWTs must not be expired.
func ValidateSnapshot(s *models.Session, now time.Time) error {
	if s == nil {
		return fmt.Errorf("%w: empty", ErrInvalidSnapshot)
	}
	if strings.TrimSpace(s.UserID) == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidSnapshot)
	}
	if !strings.Contains(s.Email, "@") {
		return fmt.Errorf("%w: malformed email", ErrInvalidSnapshot)
	}
	if strings.TrimSpace(s.Token) == "" {
		return fmt.Errorf("%w: missing token", ErrInvalidSnapshot)
	}
	if !s.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidSnapshot, s.Role)
	}
	if s.Approval != "" {
		switch s.Approval {
		case models.ApprovalPending, models.ApprovalApproved, models.ApprovalRejected:
		default:
			return fmt.Errorf("%w: unknown approval status %q", ErrInvalidSnapshot, s.Approval)
		}
	}

	claims, err := tokens.ClaimsFromToken(s.Token)
	if err != nil {
		if looksLikeJWT(s.Token) {
			return fmt.Errorf("%w: unreadable token: %v", ErrInvalidSnapshot, err)
		}
		return nil
	}
	if claims.ExpiredAt(now) {
		return fmt.Errorf("%w: token expired at %s", ErrInvalidSnapshot, claims.ExpiresAt.Time.UTC().Format(time.RFC3339))
	}
	return nil
}

func looksLikeJWT(tok string) bool {
	return strings.Count(tok, ".") == 2
}
