package web

// Config represents the web server configuration
type Config struct {
	Addr           string `json:"addr"`
	MaxUploadBytes int64  `json:"max_upload_bytes"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Addr:           ":8080",
		MaxUploadBytes: 32 << 20,
	}
}
