package services

import (
	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Context key the JWT middleware stores the claims under
const CLAIMS_KEY = "user"

type Claims struct {
	ID   string `json:"_id"`
	Role string `json:"role"`
	jwt.StandardClaims
}

func (claims *Claims) UserID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(claims.ID)
}

func NewClaimsFromContext(ctx *gin.Context) (*Claims, bool) {
	user, exists := ctx.Get(CLAIMS_KEY)
	if !exists {
		return nil, false
	}
	claims, ok := user.(*Claims)
	if !ok {
		return nil, false
	}
	return claims, true
}
