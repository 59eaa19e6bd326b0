package deps

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"bideorai/internal/config"
	"bideorai/internal/services"
)

// Requirement defines an external dependency bideorai relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
	// Path is the resolved executable when Available is true.
	Path string
}

// Tools holds resolved executable paths.
type Tools struct {
	FFprobe  string
	FFmpeg   string
	Packager string
	// B2 is empty when the configured backend does not use the b2 CLI.
	B2 string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		if abs, err := filepath.Abs(resolved); err == nil {
			resolved = abs
		}
		status.Available = true
		status.Path = resolved
		results = append(results, status)
	}
	return results
}

// Requirements lists the tools a packaging run needs for the configuration.
func Requirements(cfg config.Tools, needUploadTool bool) []Requirement {
	reqs := []Requirement{
		{Name: "ffprobe", Command: cfg.FFprobe, Description: "Required for stream inspection"},
		{Name: "ffmpeg", Command: cfg.FFmpeg, Description: "Required for transcoding and subtitle extraction"},
		{Name: "packager", Command: cfg.Packager, Description: "Shaka Packager, required for DASH packaging"},
	}
	if needUploadTool {
		reqs = append(reqs, Requirement{Name: "b2", Command: cfg.B2, Description: "Backblaze CLI, required for the b2 backend"})
	}
	return reqs
}

// ResolveTools resolves every required tool or reports all missing ones.
func ResolveTools(cfg config.Tools, needUploadTool bool) (Tools, error) {
	statuses := CheckBinaries(Requirements(cfg, needUploadTool))

	var missing []services.MissingTool
	resolved := make(map[string]string, len(statuses))
	for _, status := range statuses {
		if !status.Available {
			if status.Optional {
				continue
			}
			missing = append(missing, services.MissingTool{Name: status.Name, Command: status.Command, Detail: status.Detail})
			continue
		}
		resolved[status.Name] = status.Path
	}
	if len(missing) > 0 {
		return Tools{}, &services.ToolUnavailableError{Missing: missing}
	}
	return Tools{
		FFprobe:  resolved["ffprobe"],
		FFmpeg:   resolved["ffmpeg"],
		Packager: resolved["packager"],
		B2:       resolved["b2"],
	}, nil
}
