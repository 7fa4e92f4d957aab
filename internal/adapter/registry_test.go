package adapter

import (
	"io"
	"testing"

	"ReuniaSync/internal/config"
	"ReuniaSync/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestRegistryInitsConfiguredSources(t *testing.T) {
	cfg := &config.Config{
		Sources: map[string]config.SourceConfig{
			"fbi":   {BaseURL: "https://api.fbi.gov/wanted/v1", PollIntervalMinutes: 60},
			"namus": {BaseURL: "https://www.namus.gov/api", PollIntervalMinutes: 120},
		},
	}
	r := NewSourceRegistry(cfg, quietLogger())

	assert.Len(t, r.List(), 2)

	a, err := r.Get(model.SourceFBI)
	require.NoError(t, err)
	assert.Equal(t, model.SourceFBI, a.Slug())

	_, err = r.Get(model.SourceInterpol)
	assert.Error(t, err)
}

func TestRegistrySkipsUnknownSource(t *testing.T) {
	cfg := &config.Config{
		Sources: map[string]config.SourceConfig{
			"fbi":     {BaseURL: "https://api.fbi.gov/wanted/v1"},
			"unknown": {BaseURL: "https://example.com"},
		},
	}
	r := NewSourceRegistry(cfg, quietLogger())

	// 未知来源跳过且不影响其他来源
	assert.Len(t, r.List(), 1)
}
