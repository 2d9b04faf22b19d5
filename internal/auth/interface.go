package auth

import "transmittal/internal/domain/models"

// JWTVerifier checks bearer tokens issued by Supabase Auth.
type JWTVerifier interface {
	// VerifyToken returns the claims of a valid, signed, authenticated-role token.
	VerifyToken(tokenString string) (*models.SupabaseClaims, error)

	Close() error
}
