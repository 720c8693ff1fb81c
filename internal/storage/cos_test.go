package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCOS_Validation(t *testing.T) {
	_, err := NewCOS(&COSConfig{
		Region:    "ap-guangzhou",
		SecretID:  "id",
		SecretKey: "key",
	})
	assert.Error(t, err, "missing bucket")

	_, err = NewCOS(&COSConfig{
		Bucket: "plans-123",
		Region: "ap-guangzhou",
	})
	assert.Error(t, err, "missing credentials")

	s, err := NewCOS(&COSConfig{
		Bucket:    "plans-123",
		Region:    "ap-guangzhou",
		SecretID:  "id",
		SecretKey: "key",
	})
	assert.NoError(t, err)
	assert.NotNil(t, s)
}
