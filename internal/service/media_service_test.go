package service

import (
	"testing"

	"virtual_classroom_backend/internal/config"
	"virtual_classroom_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestValidateTermsVideoSkipsWhenUnconfigured(t *testing.T) {
	// No media dir configured: nothing to probe.
	s := NewMediaService(nil, &config.MediaConfig{})
	assert.NoError(t, s.ValidateTermsVideo(&model.Course{TermsVideoFile: "terms.mp4"}))

	// Course without a terms video: nothing to validate.
	s = NewMediaService(nil, &config.MediaConfig{Dir: "./media"})
	assert.NoError(t, s.ValidateTermsVideo(&model.Course{}))
}
