package auth

import "context"

type ctxKey string

const (
	playerContextKey  ctxKey = "lodyland.auth.player"
	sessionContextKey ctxKey = "lodyland.auth.session"
)

func withPlayerContext(ctx context.Context, playerID int64) context.Context {
	return context.WithValue(ctx, playerContextKey, playerID)
}

func withSessionContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

func PlayerFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(playerContextKey)
	id, ok := v.(int64)
	return id, ok
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	v := ctx.Value(sessionContextKey)
	s, ok := v.(Session)
	return s, ok
}
