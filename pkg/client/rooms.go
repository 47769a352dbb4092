package client

import (
	"context"
	"net/http"
	"net/url"

	apperrors "seaview/pkg/errors"
	"seaview/pkg/model"
)

// RoomCatalog reads room data owned by the external catalog service. The
// engine fetches per request so rate and capacity are never stale-cached.
type RoomCatalog interface {
	GetRoom(ctx context.Context, roomID string) (*model.Room, error)
}

type RoomCatalogClient struct {
	httpClient *HttpClient
}

func NewRoomCatalogClient(baseURL string) *RoomCatalogClient {
	return &RoomCatalogClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *RoomCatalogClient) GetRoom(ctx context.Context, roomID string) (*model.Room, error) {
	resp, err := c.httpClient.GET(ctx, "/api/rooms/"+url.PathEscape(roomID))
	if err != nil {
		return nil, apperrors.Unavailable("room catalog")
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, apperrors.RoomNotFound(roomID)
	default:
		return nil, apperrors.Internal("room catalog returned unexpected status", nil).
			WithDetails(map[string]any{"room_id": roomID, "status": resp.StatusCode})
	}

	var room model.Room
	if err := resp.DecodeJSON(&room); err != nil {
		return nil, apperrors.Internal("could not decode room catalog response", err)
	}

	return &room, nil
}
