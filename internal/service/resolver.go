package service

import (
	"context"

	"battlereport-logger/internal/domain"
	"battlereport-logger/internal/repository"

	"github.com/rs/zerolog"
)

// ServerResolver resolves a report's server row by guid, creating it on
// first sight. It remembers the last-resolved server so a contiguous run of
// reports from the same server costs one lookup; bulk files arrive sorted
// by server. Owned by a single sequential pass, not safe for sharing.
type ServerResolver struct {
	servers *repository.ServerRepository
	logger  zerolog.Logger
	cached  *domain.Server
}

func NewServerResolver(servers *repository.ServerRepository, logger zerolog.Logger) *ServerResolver {
	return &ServerResolver{servers: servers, logger: logger}
}

// Resolve returns the server id for guid, refreshing the stored name when
// the incoming one differs and is non-empty.
func (r *ServerResolver) Resolve(ctx context.Context, guid, name string) (int64, error) {
	if r.cached != nil && r.cached.GUID == guid {
		return r.cached.ID, nil
	}

	server, err := r.servers.GetByGUID(ctx, guid)
	if err != nil {
		return 0, err
	}

	if server == nil {
		id, err := r.servers.Insert(ctx, &domain.Server{Name: name, GUID: guid})
		if err != nil {
			return 0, err
		}
		r.logger.Debug().Int64("server_id", id).Str("guid", guid).Msg("server created")
		r.cached = &domain.Server{ID: id, Name: name, GUID: guid}
		return id, nil
	}

	if name != "" && name != server.Name {
		server.Name = name
		if _, err := r.servers.Update(ctx, server); err != nil {
			return 0, err
		}
		r.logger.Debug().Int64("server_id", server.ID).Str("name", name).Msg("server name refreshed")
	}

	r.cached = server
	return server.ID, nil
}
