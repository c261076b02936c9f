package middleware

import (
	"context"
	"net/http"
	"strconv"

	"energydash/domain/core"
	"energydash/domain/energy"
	"energydash/ports"
)

type buildingKey struct{}

// Building resolves the building named by the "building" query parameter,
// defaulting to the default building, and stores it in the request context.
// Lookup failures are passed to onError and stop the chain.
func Building(repo ports.BuildingRepository, onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := energy.DefaultBuildingID
			if raw := r.URL.Query().Get("building"); raw != "" {
				parsed, err := strconv.ParseInt(raw, 10, 64)
				if err != nil || parsed <= 0 {
					onError(w, r, core.NewValidationError("building", "must be a positive integer"))
					return
				}
				id = parsed
			}

			b, err := repo.Get(r.Context(), id)
			if err != nil {
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithBuilding(r.Context(), b)))
		})
	}
}

// WithBuilding returns a context carrying b.
func WithBuilding(ctx context.Context, b *energy.Building) context.Context {
	return context.WithValue(ctx, buildingKey{}, b)
}

// BuildingFrom returns the building stored by Building, or nil.
func BuildingFrom(ctx context.Context) *energy.Building {
	b, _ := ctx.Value(buildingKey{}).(*energy.Building)
	return b
}
