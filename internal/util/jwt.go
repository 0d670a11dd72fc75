package util

import (
	"lms_backend/internal/model"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims 身份提供方签发的令牌载荷，Subject 为外部用户ID
type Claims struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"picture"`
	jwt.RegisteredClaims
}

func GenerateJWT(externalUserID, name, email string, secret string, expiration time.Duration) (string, error) {
	expirationTime := time.Now().Add(expiration)

	claims := &Claims{
		Name:  name,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   externalUserID,
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, err
}

func GetClaimsFromContext(c *gin.Context) *Claims {
	v, exists := c.Get("claims")
	if !exists {
		return nil
	}
	claims, ok := v.(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetProfileFromContext 取出中间件解析好的当前用户档案
func GetProfileFromContext(c *gin.Context) *model.Profile {
	v, exists := c.Get("profile")
	if !exists {
		return nil
	}
	profile, ok := v.(*model.Profile)
	if !ok {
		return nil
	}
	return profile
}

// GetCapabilitiesFromContext 取出按角色计算好的能力集
func GetCapabilitiesFromContext(c *gin.Context) model.Capabilities {
	v, exists := c.Get("capabilities")
	if !exists {
		return model.Capabilities{}
	}
	caps, ok := v.(model.Capabilities)
	if !ok {
		return model.Capabilities{}
	}
	return caps
}
