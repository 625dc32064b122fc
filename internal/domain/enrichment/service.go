package enrichment

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

const (
	defaultMaxVideos = 5
	defaultMaxPhotos = 6
)

// Service gathers auxiliary media for a resolved place.
type Service interface {
	Enrich(ctx context.Context, place string) AuxiliaryData
}

type service struct {
	cfg    Config
	videos VideoSearcher
	maps   MapLocator
	photos PhotoSearcher
	logger *slog.Logger
}

// NewService wires the enrichment sources. Any source may be nil, in which
// case its field stays empty.
func NewService(cfg Config, videos VideoSearcher, maps MapLocator, photos PhotoSearcher, logger *slog.Logger) Service {
	if cfg.MaxVideos <= 0 {
		cfg.MaxVideos = defaultMaxVideos
	}
	if cfg.MaxPhotos <= 0 {
		cfg.MaxPhotos = defaultMaxPhotos
	}
	return &service{
		cfg:    cfg,
		videos: videos,
		maps:   maps,
		photos: photos,
		logger: logger.With("component", "enrichment.service"),
	}
}

// Enrich runs the three lookups concurrently. Failures only empty their own field.
func (s *service) Enrich(ctx context.Context, place string) AuxiliaryData {
	data := AuxiliaryData{YouTubeVideos: []Video{}, Photos: []Photo{}}
	place = strings.TrimSpace(place)
	if place == "" {
		return data
	}

	var wg sync.WaitGroup
	if s.videos != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			videos, err := s.videos.SearchVideos(ctx, place, s.cfg.MaxVideos)
			if err != nil {
				s.logger.Warn("video lookup failed", "place", place, "error", err)
				return
			}
			if len(videos) > s.cfg.MaxVideos {
				videos = videos[:s.cfg.MaxVideos]
			}
			if videos != nil {
				data.YouTubeVideos = videos
			}
		}()
	}
	if s.maps != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mapData, err := s.maps.Locate(ctx, place)
			if err != nil {
				s.logger.Warn("map lookup failed", "place", place, "error", err)
				return
			}
			data.MapData = mapData
		}()
	}
	if s.photos != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			photos, err := s.photos.SearchPhotos(ctx, place, s.cfg.MaxPhotos)
			if err != nil {
				s.logger.Warn("photo lookup failed", "place", place, "error", err)
				return
			}
			if len(photos) > s.cfg.MaxPhotos {
				photos = photos[:s.cfg.MaxPhotos]
			}
			if photos != nil {
				data.Photos = photos
			}
		}()
	}
	wg.Wait()
	return data
}
