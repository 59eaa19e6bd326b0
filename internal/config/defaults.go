package config

// Supported publish backends.
const (
	BackendB2 = "b2"
	BackendS3 = "s3"
)

const (
	defaultFFprobe           = "ffprobe"
	defaultFFmpeg            = "ffmpeg"
	defaultPackager          = "packager"
	defaultB2                = "b2"
	defaultAcceptedFormat    = "Matroska / WebM"
	defaultAcceptedExtension = ".mkv"
	defaultVideoCodec        = "h264"
	defaultAudioCodec        = "aac"
	defaultVideoEncoder      = "libx264"
	defaultAudioEncoder      = "aac"
	defaultBaseURL           = "https://f000.backblazeb2.com/file/{bucket}/{prefix}/"
	defaultStateDir          = "~/.local/share/bideorai"
	defaultLogFormat         = "auto"
	defaultLogLevel          = "info"
	defaultS3Region          = "us-east-1"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Tools: Tools{
			FFprobe:  defaultFFprobe,
			FFmpeg:   defaultFFmpeg,
			Packager: defaultPackager,
			B2:       defaultB2,
		},
		Media: Media{
			AcceptedFormat:    defaultAcceptedFormat,
			AcceptedExtension: defaultAcceptedExtension,
			VideoCodec:        defaultVideoCodec,
			AudioCodec:        defaultAudioCodec,
			VideoEncoder:      defaultVideoEncoder,
			AudioEncoder:      defaultAudioEncoder,
		},
		Publish: Publish{
			Backend:     BackendB2,
			BaseURL:     defaultBaseURL,
			Concurrency: 1,
			LockPrefix:  true,
			S3: S3{
				Region: defaultS3Region,
			},
		},
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
