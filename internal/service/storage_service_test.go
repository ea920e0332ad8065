package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kindergarten_backend/internal/config"
	"kindergarten_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageProvider_UploadAndDelete(t *testing.T) {
	root := t.TempDir()
	p := &LocalStorageProvider{Root: root}
	ctx := context.Background()

	url, err := p.Upload(ctx, "charts/child-1/a.png", strings.NewReader("png"), 3, util.MimePNG)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/charts/child-1/a.png", url)

	data, err := os.ReadFile(filepath.Join(root, "charts", "child-1", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	require.NoError(t, p.Delete(ctx, "charts/child-1/a.png"))
	_, err = os.Stat(filepath.Join(root, "charts", "child-1", "a.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorageProvider_RejectsEscapingPaths(t *testing.T) {
	p := &LocalStorageProvider{Root: t.TempDir()}

	_, err := p.Upload(context.Background(), "../outside.png", strings.NewReader("x"), 1, util.MimePNG)

	assert.Error(t, err)
}

func TestNewStorageService_DefaultsToLocal(t *testing.T) {
	svc := NewStorageService(&config.StorageConfig{Type: util.StorageLocal, LocalPath: t.TempDir()})

	assert.IsType(t, &LocalStorageProvider{}, svc.Provider)
}

func TestNewStorageService_MinioAndOSS(t *testing.T) {
	minioSvc := NewStorageService(&config.StorageConfig{
		Type:          util.StorageMinio,
		MinioEndpoint: "localhost:9000",
		MinioAccessID: "minio",
		MinioSecret:   "minio123",
		MinioBucket:   "charts",
	})
	require.IsType(t, &MinioStorageProvider{}, minioSvc.Provider)
	assert.Equal(t, "/charts/a.png", minioSvc.Provider.GetURL("a.png"))

	ossSvc := NewStorageService(&config.StorageConfig{
		Type:         util.StorageOSS,
		OSSEndpoint:  "oss-cn-hangzhou.aliyuncs.com",
		OSSAccessKey: "ak",
		OSSSecretKey: "sk",
		OSSBucket:    "kg-charts",
	})
	require.IsType(t, &OSSStorageProvider{}, ossSvc.Provider)
	assert.Equal(t, "https://kg-charts.oss-cn-hangzhou.aliyuncs.com/a.png", ossSvc.Provider.GetURL("a.png"))
}
