package config

// Default paths and upload limits
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./maktaba.db"

	// DefaultUploadsDir is the root directory holding the upload areas
	DefaultUploadsDir = "./uploads"

	// MaxBookFileSize is the maximum accepted size for book files (25MB)
	MaxBookFileSize = 25 * 1024 * 1024

	// MaxImageFileSize is the maximum accepted size for images (5MB)
	MaxImageFileSize = 5 * 1024 * 1024
)
