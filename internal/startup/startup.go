package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"clip-relay/internal/logging"
	"clip-relay/internal/runner"
	"clip-relay/internal/workers"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration. It is loaded once at
// process start, passed by reference into each component, and never
// mutated afterwards.
type Config struct {
	Port        string
	MetricsPort string
	CacheDir    string

	MaxFileSizeMB   int
	MaxVideoSeconds int
	SizeMargin      float64

	ServerName     string
	DefaultChannel string
	Channels       map[string]string

	ProbeTimeout     time.Duration
	DownloadTimeout  time.Duration
	TranscodeTimeout time.Duration
	MaxConcurrent    int

	LogStaticFiles  bool
	LogHealthChecks bool
	MetricsEnabled  bool

	// Derived paths
	DownloadDir string
	VideoDir    string
	HistoryPath string
	LogFilePath string
}

// sizeMargin scales the configured max file size down to leave
// encoding overhead headroom.
const sizeMargin = 0.9

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	cacheDir := getEnv("CACHE_DIR", "cache")
	maxFileSize := getEnvInt("MAX_FILE_SIZE", 10)
	maxVideoLength := getEnvInt("MAX_VIDEO_LENGTH", 600)
	serverName := getEnv("SERVER_NAME", "clip-relay")
	defaultChannel := getEnv("DEFAULT_CHANNEL", "general")
	probeTimeout := getEnvDuration("PROBE_TIMEOUT", 30*time.Second)
	downloadTimeout := getEnvDuration("DOWNLOAD_TIMEOUT", 10*time.Minute)
	transcodeTimeout := getEnvDuration("TRANSCODE_TIMEOUT", 15*time.Minute)
	maxConcurrent := getEnvInt("MAX_CONCURRENT", workers.ForMixed(8))
	logStaticFiles := getEnvBool("LOG_STATIC_FILES", false)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)

	channels, err := parseChannels(os.Getenv("CHANNELS"), os.Getenv("WEBHOOK_URL"), defaultChannel)
	if err != nil {
		return nil, err
	}

	logging.Info("  PORT:              %s", port)
	logging.Info("  METRICS_PORT:      %s", metricsPort)
	logging.Info("  METRICS_ENABLED:   %v", metricsEnabled)
	logging.Info("  CACHE_DIR:         %s", cacheDir)
	logging.Info("  MAX_FILE_SIZE:     %d MB", maxFileSize)
	logging.Info("  MAX_VIDEO_LENGTH:  %d s", maxVideoLength)
	logging.Info("  SERVER_NAME:       %s", serverName)
	logging.Info("  DEFAULT_CHANNEL:   %s", defaultChannel)
	logging.Info("  CHANNELS:          %s", channelNames(channels))
	logging.Info("  PROBE_TIMEOUT:     %s", probeTimeout)
	logging.Info("  DOWNLOAD_TIMEOUT:  %s", downloadTimeout)
	logging.Info("  TRANSCODE_TIMEOUT: %s", transcodeTimeout)
	logging.Info("  MAX_CONCURRENT:    %d", maxConcurrent)
	logging.Info("  LOG_LEVEL:         %s", logging.GetLevel())

	if maxFileSize <= 0 {
		return nil, fmt.Errorf("MAX_FILE_SIZE must be positive, got %d", maxFileSize)
	}
	if maxVideoLength <= 0 {
		return nil, fmt.Errorf("MAX_VIDEO_LENGTH must be positive, got %d", maxVideoLength)
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	// Resolve paths
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	cacheDir, err = filepath.Abs(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory path: %w", err)
	}
	logging.Info("  Cache directory (absolute): %s", cacheDir)

	config := &Config{
		Port:             port,
		MetricsPort:      metricsPort,
		CacheDir:         cacheDir,
		MaxFileSizeMB:    maxFileSize,
		MaxVideoSeconds:  maxVideoLength,
		SizeMargin:       sizeMargin,
		ServerName:       serverName,
		DefaultChannel:   defaultChannel,
		Channels:         channels,
		ProbeTimeout:     probeTimeout,
		DownloadTimeout:  downloadTimeout,
		TranscodeTimeout: transcodeTimeout,
		MaxConcurrent:    maxConcurrent,
		LogStaticFiles:   logStaticFiles,
		LogHealthChecks:  logHealthChecks,
		MetricsEnabled:   metricsEnabled,
		DownloadDir:      filepath.Join(cacheDir, "downloads"),
		VideoDir:         filepath.Join(cacheDir, "videos"),
		HistoryPath:      filepath.Join(cacheDir, "history.db"),
		LogFilePath:      filepath.Join(cacheDir, "relay.log"),
	}

	for _, dir := range []struct{ path, name string }{
		{config.CacheDir, "cache"},
		{config.DownloadDir, "downloads"},
		{config.VideoDir, "videos"},
	} {
		if err := ensureDirectory(dir.path, dir.name); err != nil {
			return nil, fmt.Errorf("%s directory error: %w", dir.name, err)
		}
	}

	logging.Debug("  Testing cache directory write access...")
	if err := testWriteAccess(config.CacheDir); err != nil {
		return nil, fmt.Errorf("cache directory is not writable: %w", err)
	}
	logging.Info("  [OK] Cache directory is writable")

	if _, ok := config.Channels[config.DefaultChannel]; !ok {
		return nil, fmt.Errorf("default channel %q has no configured endpoint", config.DefaultChannel)
	}

	return config, nil
}

// parseChannels builds the channel table from the CHANNELS list
// ("name=url,name=url"). For single-channel deployments WEBHOOK_URL
// alone maps the default channel name to that endpoint.
func parseChannels(channelList, webhookURL, defaultChannel string) (map[string]string, error) {
	channels := make(map[string]string)

	if channelList != "" {
		for _, pair := range strings.Split(channelList, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			name, endpoint, ok := strings.Cut(pair, "=")
			name = strings.TrimSpace(name)
			endpoint = strings.TrimSpace(endpoint)
			if !ok || name == "" || endpoint == "" {
				return nil, fmt.Errorf("invalid CHANNELS entry %q, expected name=url", pair)
			}
			channels[name] = endpoint
		}
	}

	if webhookURL != "" {
		if _, exists := channels[defaultChannel]; !exists {
			channels[defaultChannel] = webhookURL
		}
	}

	if len(channels) == 0 {
		return nil, fmt.Errorf("no delivery channels configured (set CHANNELS or WEBHOOK_URL)")
	}

	return channels, nil
}

func channelNames(channels map[string]string) string {
	names := make([]string, 0, len(channels))
	for name := range channels {
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

// CheckTools verifies the external media tools are on PATH. A missing
// tool is a warning, not a startup failure, so a deployment can come up
// before its tool image layer is ready.
func CheckTools() {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("EXTERNAL TOOLS")
	logging.Info("------------------------------------------------------------")

	for _, tool := range []string{"yt-dlp", "ffprobe", "ffmpeg"} {
		if err := runner.LookPath(tool); err != nil {
			logging.Warn("  %v; pipeline requests will fail until it is installed", err)
			continue
		}
		logging.Info("  [OK] %s is available", tool)
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified (e.g., the catch-all)
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		for _, route := range routes {
			logging.Debug("    %-6s %s", route.Method, route.Path)
		}
	}

	logging.Info("  HTTP logging enabled")
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application:   http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
       _ _                     _
   ___| (_)_ __       _ __ ___| | __ _ _   _
  / __| | | '_ \ ____| '__/ _ \ |/ _' | | | |
 | (__| | | |_) |____| | |  __/ | (_| | |_| |
  \___|_|_| .__/     |_|  \___|_|\__,_|\__, |
          |_|                          |___/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Don't return error since write access was confirmed
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid duration value for %s: %q, using default: %s", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
