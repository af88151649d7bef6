package mw

import (
	"context"
	"net/http"
	"strings"

	"ADMINKA1.0/internal/models/domainErrors"
)

type ctxKey int

const actorKey ctxKey = iota

// Auth пускает только админов. Ответ на любой сбой одинаковый 401,
// без намёков существует ли ресурс. Проверка идёт до любого похода
// в базу.
func Auth(tokens map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				WriteError(w, domainErrors.ErrUnauthorized)
				return
			}

			actorID, ok := tokens[token]
			if !ok {
				WriteError(w, domainErrors.ErrUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), actorKey, actorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorID возвращает id админа, положенный Auth.
func ActorID(ctx context.Context) string {
	id, _ := ctx.Value(actorKey).(string)
	return id
}
