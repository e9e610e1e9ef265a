package config

// ServerConfig defines configuration for the HTTP service
type ServerConfig struct {
	ListenAddress    string `json:"listen_address,omitempty" yaml:"listen_address,omitempty" validate:"required,hostname_port"`
	MaxUploadSizeMB  int    `json:"max_upload_size_mb,omitempty" yaml:"max_upload_size_mb,omitempty" validate:"min=1"`
	ReadTimeoutSecs  int    `json:"read_timeout_secs,omitempty" yaml:"read_timeout_secs,omitempty" validate:"min=1"`
	WriteTimeoutSecs int    `json:"write_timeout_secs,omitempty" yaml:"write_timeout_secs,omitempty" validate:"min=1"`
	SessionHeader    string `json:"session_header,omitempty" yaml:"session_header,omitempty"`
	HotReload        bool   `json:"hot_reload" yaml:"hot_reload"`
}

// NewDefaultServerConfig creates default server configuration
func NewDefaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddress:    DefaultServerListenAddress,
		MaxUploadSizeMB:  DefaultServerMaxUploadSizeMB,
		ReadTimeoutSecs:  DefaultServerReadTimeoutSecs,
		WriteTimeoutSecs: DefaultServerWriteTimeoutSecs,
		SessionHeader:    DefaultServerSessionHeader,
	}
}
