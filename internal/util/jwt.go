package util

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// EntryClaims is the classroom entry pass minted when a student accepts the
// terms. It scopes the holder to one session, one cohort, one role.
type EntryClaims struct {
	SessionID string `json:"session_id"`
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
	Cohort    string `json:"cohort"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

func GenerateEntryToken(claims EntryClaims, secret string, expiration time.Duration) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseEntryToken(tokenString, secret string) (*EntryClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &EntryClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*EntryClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, err
}

func GetEntryFromContext(c *gin.Context) *EntryClaims {
	v, exists := c.Get("entry")
	if !exists {
		return nil
	}
	claims, ok := v.(*EntryClaims)
	if !ok {
		return nil
	}
	return claims
}
