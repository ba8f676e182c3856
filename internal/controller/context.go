package controller

import "context"

type ctxKey int

const userIdKey ctxKey = 0

func (c controller) getUserIdFromCtx(ctx context.Context) string {
	userId, ok := ctx.Value(userIdKey).(string)
	if !ok {
		return ""
	}

	return userId
}
