package uploader

import (
	"mime/multipart"
	"testing"
	"time"
	"voucher_wheel/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImage(t *testing.T) {
	ct, err := ValidateImage(&multipart.FileHeader{Filename: "logo.PNG", Size: 1024})
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	_, err = ValidateImage(&multipart.FileHeader{Filename: "run.exe", Size: 10})
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	_, err = ValidateImage(&multipart.FileHeader{Filename: "big.jpg", Size: MaxImageSize + 1})
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), "Shop.JPG")
	assert.Regexp(t, `^shops/20250314/[0-9a-f-]{36}\.jpg$`, key)
}

func TestNewAliyunOSSUploaderRequiresConfig(t *testing.T) {
	_, err := NewAliyunOSSUploader(config.OSSConfig{})
	assert.ErrorIs(t, err, ErrUploaderNotConfigured)
}
