package enrichment

import (
	"context"

	"github.com/yanqian/weather-records/internal/domain/geo"
)

// Config bounds the amount of media attached to a record.
type Config struct {
	MaxVideos int
	MaxPhotos int
}

// Video is a related video found for a place.
type Video struct {
	Title     string `json:"title"`
	VideoID   string `json:"videoId"`
	Thumbnail string `json:"thumbnail"`
	WatchURL  string `json:"watchUrl"`
}

// MapData is map metadata for a place.
type MapData struct {
	Address     string           `json:"address"`
	PlaceID     string           `json:"placeId,omitempty"`
	Coordinates *geo.Coordinates `json:"coordinates,omitempty"`
	EmbedURL    string           `json:"embedUrl,omitempty"`
}

// Photo is a related photo found for a place.
type Photo struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Caption      string `json:"caption"`
}

// AuxiliaryData is best-effort decoration attached to a record.
type AuxiliaryData struct {
	YouTubeVideos []Video  `json:"youtubeVideos"`
	MapData       *MapData `json:"mapData,omitempty"`
	Photos        []Photo  `json:"photos"`
}

// VideoSearcher finds videos about a place.
type VideoSearcher interface {
	SearchVideos(ctx context.Context, place string, limit int) ([]Video, error)
}

// MapLocator finds map metadata for a place.
type MapLocator interface {
	Locate(ctx context.Context, place string) (*MapData, error)
}

// PhotoSearcher finds photos of a place.
type PhotoSearcher interface {
	SearchPhotos(ctx context.Context, place string, limit int) ([]Photo, error)
}
