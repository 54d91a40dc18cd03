package storage

import (
	"context"
	"testing"
	"time"

	appconfig "estate_e2e/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactKey(t *testing.T) {
	run := uuid.MustParse("6f1c1e0e-3c1a-4d2b-9d6c-0c2f1a7b9e11")
	at := time.Date(2026, 10, 15, 23, 30, 0, 0, time.FixedZone("EDT", -4*3600))

	got := ArtifactKey(at, run, "search/by location", "failure.png")
	assert.Equal(t, "e2e/2026-10-16/6f1c1e0e-3c1a-4d2b-9d6c-0c2f1a7b9e11/search_by_location/failure.png", got)
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  appconfig.ArtifactsConfig
		want string
	}{
		{
			"aws",
			appconfig.ArtifactsConfig{Bucket: "e2e", Region: "ca-central-1"},
			"https://e2e.s3.ca-central-1.amazonaws.com/k.png",
		},
		{
			"spaces",
			appconfig.ArtifactsConfig{Bucket: "e2e", Endpoint: "https://tor1.digitaloceanspaces.com"},
			"https://e2e.tor1.digitaloceanspaces.com/k.png",
		},
		{
			"minio",
			appconfig.ArtifactsConfig{Bucket: "e2e", Endpoint: "http://localhost:9000/"},
			"http://localhost:9000/e2e/k.png",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicURL(tt.cfg, "k.png"))
		})
	}
}

func TestNewUploader_DisabledIsNoop(t *testing.T) {
	up, err := NewUploader(context.Background(), appconfig.ArtifactsConfig{})
	require.NoError(t, err)
	assert.IsType(t, NoopUploader{}, up)

	key, err := up.Upload(context.Background(), uuid.New(), "s", "n", []byte("x"), "image/png")
	require.NoError(t, err)
	assert.Empty(t, key)
}
