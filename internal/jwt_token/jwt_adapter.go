package jwttoken

import (
	authmw "peerhelp/pkg/platform/middleware/auth"
	strutil "peerhelp/pkg/platform/strings"
)

// ToMiddlewareClaims normalizes role names so role checks are case-insensitive.
func ToMiddlewareClaims(claims *Claims) *authmw.JWTClaims {
	return &authmw.JWTClaims{
		AccountID: claims.AccountID,
		Roles:     strutil.NormalizeSet(claims.Roles),
	}
}

// JWTServiceAdapter satisfies authmw.JWTValidator.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
