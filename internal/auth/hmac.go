package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mautops/request-gin/internal/types"
)

// HMACClaims 自签发 JWT 声明
type HMACClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// HMACTokenValidator HS256 Token 验证器
type HMACTokenValidator struct {
	secret []byte
}

// NewHMACTokenValidator 创建 HS256 Token 验证器
func NewHMACTokenValidator(secret string) *HMACTokenValidator {
	return &HMACTokenValidator{secret: []byte(secret)}
}

// ValidateToken 验证签名与过期时间
func (v *HMACTokenValidator) ValidateToken(tokenString string) (*HMACClaims, error) {
	claims := &HMACClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}
	return claims, nil
}

// Resolve 实现 PrincipalResolver
func (v *HMACTokenValidator) Resolve(tokenString string) (*types.Principal, error) {
	claims, err := v.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, ErrInvalidClaims
	}

	role, err := types.ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}

	return &types.Principal{
		ID:    claims.UserID,
		Role:  role,
		Name:  claims.Name,
		Email: claims.Email,
	}, nil
}
