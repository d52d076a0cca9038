package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresGraphDatabase(t *testing.T) {
	t.Setenv("NEO4J_URI", "")
	t.Setenv("MEMORY_STORE", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadKeepsAccessKeyAndRegionApart(t *testing.T) {
	t.Setenv("MEMORY_STORE", "true")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIAEXAMPLE")
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("S3_BUCKET", "phm-uploads")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "AKIAEXAMPLE", cfg.AWSAccessKeyID)
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.Equal(t, "phm-uploads", cfg.S3Bucket)
	assert.Equal(t, 60*time.Second, cfg.UploadURLExpiry)
}

func TestLoadProductionNeedsCSRFKey(t *testing.T) {
	t.Setenv("MEMORY_STORE", "true")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CSRF_KEY", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestEnvList(t *testing.T) {
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.example , ,https://b.example")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, envList("CORS_ALLOW_ORIGINS", nil))

	t.Setenv("CORS_ALLOW_ORIGINS", " , ")
	assert.Equal(t, []string{"x"}, envList("CORS_ALLOW_ORIGINS", []string{"x"}))
}
