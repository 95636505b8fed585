package apperror

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigurationError(t *testing.T) {
	err := fmt.Errorf("upload snapshot: %w", NotConfigured("minio endpoint missing"))

	assert.True(t, IsConfiguration(err))
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, err.Error(), "minio endpoint missing")
	assert.False(t, IsCloudUpload(err))
}

func TestLocalIOError(t *testing.T) {
	err := &LocalIOError{Op: "write", Path: "uploads/docs/1_a.txt", Err: os.ErrPermission}

	assert.True(t, IsLocalIO(err))
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Equal(t, "local write uploads/docs/1_a.txt: permission denied", err.Error())
}

func TestCloudUploadError(t *testing.T) {
	err := &CloudUploadError{Key: "files/docs/1_a.txt", Err: context.DeadlineExceeded}

	assert.True(t, IsCloudUpload(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, IsLocalIO(err))
	assert.False(t, IsConfiguration(errors.New("plain")))
}
