package schema

// SystemCheck reports tool availability on the server.
type SystemCheck struct {
	YtDlpInstalled bool   `json:"yt_dlp_installed" yaml:"yt_dlp_installed"`
	YtDlpVersion   string `json:"yt_dlp_version" yaml:"yt_dlp_version"`
	DenoInstalled  bool   `json:"deno_installed" yaml:"deno_installed"`
	DenoVersion    string `json:"deno_version" yaml:"deno_version"`
}

// Version is the backend version.
type Version struct {
	Version string `json:"version" yaml:"version"`
}

// AppInfo describes the deployed application.
type AppInfo struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Version     string `json:"version" yaml:"version"`
}

// ActionResult is returned by system actions (upgrade, restart, shutdown).
type ActionResult struct {
	Success bool   `json:"success" yaml:"success"`
	Message string `json:"message" yaml:"message"`
}

// ServerInfo reports host resources.
type ServerInfo struct {
	Platform        string `json:"platform" yaml:"platform"`
	PythonVersion   string `json:"python_version" yaml:"python_version"`
	CPUCount        int    `json:"cpu_count" yaml:"cpu_count"`
	MemoryTotal     int64  `json:"memory_total" yaml:"memory_total"`
	MemoryAvailable int64  `json:"memory_available" yaml:"memory_available"`
	DiskTotal       int64  `json:"disk_total" yaml:"disk_total"`
	DiskUsed        int64  `json:"disk_used" yaml:"disk_used"`
	DiskFree        int64  `json:"disk_free" yaml:"disk_free"`
}

// EnvConfig is the server's editable environment. Values are strings, numbers or booleans.
type EnvConfig map[string]any

// Health is the unauthenticated liveness response.
type Health struct {
	Status string `json:"status" yaml:"status"`
}
