package wsrouter

import "context"

type ctxKey int

const eventKey ctxKey = 0

func GetEventFromCtx(ctx context.Context) string {
	event, ok := ctx.Value(eventKey).(string)
	if !ok {
		return ""
	}

	return event
}
