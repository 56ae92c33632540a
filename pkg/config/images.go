package config

import "time"

// ImagesConfig holds runtime configuration for the website images service.
type ImagesConfig struct {
	Environment    string
	Addr           string
	AssetBucket    string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
	PresignExpiry  time.Duration
}

// LoadImagesConfig constructs an ImagesConfig from environment variables.
func LoadImagesConfig() ImagesConfig {
	return ImagesConfig{
		Environment:    GetString("APP_ENV", "development"),
		Addr:           GetString("IMAGES_ADDR", ":8088"),
		AssetBucket:    GetString("WEB_ASSET_BUCKET", ""),
		S3Region:       GetString("S3_REGION", "us-east-1"),
		S3BaseEndpoint: GetString("S3_BASE_ENDPOINT", ""),
		S3AccessKey:    GetString("S3_ACCESS_KEY", ""),
		S3SecretKey:    GetString("S3_SECRET_KEY", ""),
		PresignExpiry:  time.Duration(GetInt("PRESIGN_EXPIRY_HOURS", 12)) * time.Hour,
	}
}
