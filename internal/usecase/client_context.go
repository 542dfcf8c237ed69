package usecase

import "context"

type clientIDKey struct{}

// ContextWithClientID tags ctx with the client that triggers a session change.
// The id travels as the Origin of published session events.
func ContextWithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, clientID)
}

func ClientIDFromContext(ctx context.Context) string {
	clientID, _ := ctx.Value(clientIDKey{}).(string)
	return clientID
}
