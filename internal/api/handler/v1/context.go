package v1

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/evenio/billetterie-api/internal/api/handler/v1/response"
	"github.com/evenio/billetterie-api/internal/api/middleware"
	"github.com/evenio/billetterie-api/internal/domain"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

// getUserFromContext loads the authenticated user from the ID the JWT
// middleware stored on the request context.
func getUserFromContext(ctx *gin.Context, svc UserService) (domain.User, *response.Err) {
	raw, exists := ctx.Get(middleware.ContextKeyUserID)
	if !exists {
		return domain.User{}, response.ErrUnauthorized(errors.New("not authenticated"))
	}

	userID, ok := raw.(uint)
	if !ok {
		return domain.User{}, response.ErrUnauthorized(errors.New("invalid authentication context"))
	}

	user, err := svc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		return domain.User{}, response.ErrUnauthorized(errors.New("unknown user"))
	}

	return user, nil
}

func requireAdmin(ctx *gin.Context, svc UserService) (domain.User, *response.Err) {
	user, respErr := getUserFromContext(ctx, svc)
	if respErr != nil {
		return domain.User{}, respErr
	}

	if !user.IsAdmin() {
		return domain.User{}, response.ErrPermissionDenied(errors.New("administrator role required"))
	}

	return user, nil
}
