package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/yahayabawa/maktaba/internal/apperror"
	"github.com/yahayabawa/maktaba/internal/entities"
)

// ContextKeyUser is the gin context key holding the authenticated user.
const ContextKeyUser = "auth_user"

// RequireAuth resolves the bearer token to a user record and aborts with
// 401 when the token is missing, invalid or names a deleted user.
func RequireAuth(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := ExtractToken(c.GetHeader("Authorization"))
		if err != nil {
			abort(c, apperror.NewUnauthenticated("authentication required"))
			return
		}
		user, resolveErr := service.ResolveToken(token)
		if resolveErr != nil {
			abort(c, apperror.From(resolveErr))
			return
		}
		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated user holds one of
// the given roles. Must run after RequireAuth.
func RequireRole(roles ...entities.Role) gin.HandlerFunc {
	allowed := make(map[entities.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abort(c, apperror.NewUnauthenticated("authentication required"))
			return
		}
		if !allowed[user.Role] {
			abort(c, apperror.NewForbidden("insufficient role for this operation"))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user from the gin context, or nil.
func CurrentUser(c *gin.Context) *entities.User {
	val, ok := c.Get(ContextKeyUser)
	if !ok {
		return nil
	}
	user, ok := val.(*entities.User)
	if !ok {
		return nil
	}
	return user
}

func abort(c *gin.Context, err *apperror.Error) {
	c.AbortWithStatusJSON(err.StatusCode(), gin.H{
		"success": false,
		"message": err.Message,
	})
}
