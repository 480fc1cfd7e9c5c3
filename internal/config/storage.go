package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables configuring the S3-compatible object storage used
// for s3:// archive sources and result uploads.
const (
	EnvS3Endpoint  = "WPFLEET_S3_ENDPOINT"
	EnvS3Region    = "WPFLEET_S3_REGION"
	EnvS3AccessKey = "WPFLEET_S3_ACCESS_KEY"
	EnvS3SecretKey = "WPFLEET_S3_SECRET_KEY"
	EnvS3PathStyle = "WPFLEET_S3_PATH_STYLE"

	defaultS3Region = "us-east-1"
)

// ObjectStorage holds S3 connection settings. Empty keys fall back to the
// AWS default credential chain.
type ObjectStorage struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	PathStyle bool
}

// LoadObjectStorage reads object storage settings from env, falling back to
// the process environment when env is nil.
func LoadObjectStorage(env map[string]string) ObjectStorage {
	get := func(key string) string {
		if env != nil {
			if v, ok := env[key]; ok {
				return strings.TrimSpace(v)
			}
		}
		return strings.TrimSpace(os.Getenv(key))
	}

	s := ObjectStorage{
		Endpoint:  get(EnvS3Endpoint),
		Region:    get(EnvS3Region),
		AccessKey: get(EnvS3AccessKey),
		SecretKey: get(EnvS3SecretKey),
	}
	if s.Region == "" {
		s.Region = defaultS3Region
	}
	if v, err := strconv.ParseBool(get(EnvS3PathStyle)); err == nil {
		s.PathStyle = v
	}
	return s
}
