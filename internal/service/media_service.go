package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"virtual_classroom_backend/internal/config"
	"virtual_classroom_backend/internal/model"
	"virtual_classroom_backend/internal/util"
	"virtual_classroom_backend/pkg/logger"

	"go.uber.org/zap"
)

// MediaService resolves course media durations and stores verification
// artifacts. Selfie frames arrive as browser data URLs, voice clips as raw
// webm bytes; both are persisted through the configured storage provider.
type MediaService struct {
	storage *StorageService
	cfg     *config.MediaConfig
}

func NewMediaService(storage *StorageService, cfg *config.MediaConfig) *MediaService {
	return &MediaService{storage: storage, cfg: cfg}
}

// ResolveDurations fills in DurationMinutes for content items that reference
// a video file but carry no duration, by probing the file. Items that cannot
// be probed keep zero and fall back to the engine's demo delay.
func (s *MediaService) ResolveDurations(course *model.Course) {
	if s.cfg.Dir == "" {
		return
	}
	for mi := range course.Modules {
		items := course.Modules[mi].Items
		for ii := range items {
			item := &items[ii]
			if item.Type != model.ItemContent || item.VideoFileName == "" || item.DurationMinutes > 0 {
				continue
			}
			info, err := util.GetVideoInfo(filepath.Join(s.cfg.Dir, item.VideoFileName))
			if err != nil {
				logger.Log.Warn("could not probe course video",
					zap.String("course", course.ID),
					zap.String("file", item.VideoFileName),
					zap.Error(err))
				continue
			}
			item.DurationMinutes = info.Duration / 60
		}
	}
}

// ValidateTermsVideo checks that the course's mandatory instructional video
// exists and is playable before onboarding depends on its onEnded gate.
func (s *MediaService) ValidateTermsVideo(course *model.Course) error {
	if s.cfg.Dir == "" || course.TermsVideoFile == "" {
		return nil
	}
	_, err := util.GetVideoInfo(filepath.Join(s.cfg.Dir, course.TermsVideoFile))
	return err
}

// StoreSelfie decodes the captured frame's data URL and persists it,
// returning the artifact URL.
func (s *MediaService) StoreSelfie(ctx context.Context, studentID, dataURL string) (string, error) {
	payload, contentType, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	ext := "jpg"
	if strings.Contains(contentType, "png") {
		ext = "png"
	}
	name := fmt.Sprintf("selfies/%s-%d.%s", studentID, time.Now().UnixMilli(), ext)
	return s.storage.Provider.Upload(ctx, name, bytes.NewReader(payload), int64(len(payload)), contentType)
}

// StoreVoiceClip persists the recorded verification clip.
func (s *MediaService) StoreVoiceClip(ctx context.Context, studentID string, clip []byte) (string, error) {
	if len(clip) == 0 {
		return "", util.ErrNoRecording
	}
	name := fmt.Sprintf("voice/%s-%d.webm", studentID, time.Now().UnixMilli())
	return s.storage.Provider.Upload(ctx, name, bytes.NewReader(clip), int64(len(clip)), "audio/webm")
}

func decodeDataURL(dataURL string) ([]byte, string, error) {
	const marker = ";base64,"
	if !strings.HasPrefix(dataURL, "data:") {
		return nil, "", util.ErrNoFrameCaptured
	}
	idx := strings.Index(dataURL, marker)
	if idx < 0 {
		return nil, "", util.ErrNoFrameCaptured
	}
	contentType := dataURL[len("data:"):idx]
	payload, err := base64.StdEncoding.DecodeString(dataURL[idx+len(marker):])
	if err != nil {
		return nil, "", fmt.Errorf("decoding frame: %w", err)
	}
	return payload, contentType, nil
}
