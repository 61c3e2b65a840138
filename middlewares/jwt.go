package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/CPU-commits/Intranet_BCourses/res"
	"github.com/CPU-commits/Intranet_BCourses/services"
	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

func unauthorized(ctx *gin.Context) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, &res.Response{
		Success: false,
		Message: "Unauthorized",
	})
}

func extractToken(ctx *gin.Context) string {
	bearer := ctx.GetHeader("Authorization")
	token := strings.TrimPrefix(bearer, "Bearer ")
	if token == bearer {
		return ""
	}
	return strings.TrimSpace(token)
}

// Verifies the HS256 bearer token and stores its claims in the context
func JWTMiddleware(secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := extractToken(ctx)
		if tokenString == "" {
			unauthorized(ctx)
			return
		}
		claims := &services.Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid || claims.ID == "" {
			unauthorized(ctx)
			return
		}
		ctx.Set(services.CLAIMS_KEY, claims)
		ctx.Next()
	}
}
