package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dtroode/themekeeper/internal/api/grpc/adminapi"
	"github.com/dtroode/themekeeper/internal/logger"
	"github.com/dtroode/themekeeper/internal/model"
	"github.com/dtroode/themekeeper/internal/service"
)

// ThemeService serves and mutates the mirrored theme list.
type ThemeService interface {
	Current() service.ThemeEvent
	Filter(query string) service.FilterResult
	Listen() (<-chan service.ThemeEvent, func())
	Create(ctx context.Context, in model.ThemeInput) (model.Theme, error)
	Update(ctx context.Context, key string, in model.ThemeInput) (model.Theme, error)
	Delete(ctx context.Context, key string) error
}

// Themes handles the admin.Themes service.
type Themes struct {
	themeService ThemeService
	logger       *logger.Logger
}

// NewThemes creates a new Themes handler.
func NewThemes(themeService ThemeService, logger *logger.Logger) *Themes {
	return &Themes{
		themeService: themeService,
		logger:       logger,
	}
}

// ListThemes returns the cached themes matching the query.
func (h *Themes) ListThemes(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req adminapi.ThemeQuery
	if err := adminapi.Decode(in, &req); err != nil {
		return nil, invalidRequest(err)
	}

	current := h.themeService.Current()
	result := current.Filter(req.Query)

	h.logger.Debug("Themes handler: list served",
		"query", result.Query,
		"matched", len(result.Themes),
		"loaded", result.Loaded)

	return adminapi.Encode(themeListToAPI(result, current.Revision, nil))
}

// WatchThemes streams the filtered list every time the cache changes or a
// load failure is reported. Intermediate states may be skipped when the
// client reads slower than snapshots arrive.
func (h *Themes) WatchThemes(in *structpb.Struct, stream adminapi.ThemesWatchServer) error {
	var req adminapi.ThemeQuery
	if err := adminapi.Decode(in, &req); err != nil {
		return invalidRequest(err)
	}

	events, cancel := h.themeService.Listen()
	defer cancel()

	h.logger.Debug("Themes handler: watch started", "query", req.Query)

	// A loaded list is delivered by Listen itself.
	if current := h.themeService.Current(); !current.Loaded {
		if err := h.send(stream, current, req.Query); err != nil {
			return err
		}
	}

	for {
		select {
		case <-stream.Context().Done():
			h.logger.Debug("Themes handler: watch ended", "query", req.Query)
			return nil
		case event, ok := <-events:
			if !ok {
				return status.Error(codes.Unavailable, "theme list closed")
			}
			if err := h.send(stream, event, req.Query); err != nil {
				return err
			}
		}
	}
}

func (h *Themes) send(stream adminapi.ThemesWatchServer, event service.ThemeEvent, query string) error {
	out, err := adminapi.Encode(themeListToAPI(event.Filter(query), event.Revision, event.Notice))
	if err != nil {
		return status.Error(codes.Internal, "internal server error")
	}
	if err := stream.Send(out); err != nil {
		h.logger.Debug("Themes handler: watch send failed", "error", err.Error())
		return err
	}
	return nil
}

// CreateTheme stores a new theme under a generated key.
func (h *Themes) CreateTheme(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req adminapi.ThemeWrite
	if err := adminapi.Decode(in, &req); err != nil {
		return nil, invalidRequest(err)
	}

	theme, err := h.themeService.Create(ctx, themeInput(req))
	if err != nil {
		h.logger.Error("Themes handler: create failed",
			"title", req.Title,
			"error", err.Error())
		return nil, handleError(err)
	}

	return adminapi.Encode(themeToAPI(theme))
}

// UpdateTheme overwrites an existing theme.
func (h *Themes) UpdateTheme(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req adminapi.ThemeWrite
	if err := adminapi.Decode(in, &req); err != nil {
		return nil, invalidRequest(err)
	}

	theme, err := h.themeService.Update(ctx, req.Key, themeInput(req))
	if err != nil {
		h.logger.Error("Themes handler: update failed",
			"key", req.Key,
			"error", err.Error())
		return nil, handleError(err)
	}

	return adminapi.Encode(themeToAPI(theme))
}

// DeleteTheme removes a theme. Its tests are removed in the background.
func (h *Themes) DeleteTheme(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req adminapi.ThemeKey
	if err := adminapi.Decode(in, &req); err != nil {
		return nil, invalidRequest(err)
	}

	if err := h.themeService.Delete(ctx, req.Key); err != nil {
		h.logger.Error("Themes handler: delete failed",
			"key", req.Key,
			"error", err.Error())
		return nil, handleError(err)
	}

	return adminapi.Encode(adminapi.Ack{Message: service.MsgThemeDeleted})
}

func themeInput(req adminapi.ThemeWrite) model.ThemeInput {
	return model.ThemeInput{
		Title:    req.Title,
		Theory:   req.Theory,
		Examples: req.Examples,
	}
}
