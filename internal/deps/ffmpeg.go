package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"bideorai/internal/command"
)

// CheckFFmpegEncoders reports whether ffmpeg was built with the configured
// encoders. It parses `ffmpeg -hide_banner -encoders`, whose listing rows
// start with a six-character capability field followed by the encoder name.
func CheckFFmpegEncoders(ctx context.Context, runner command.Runner, ffmpeg string, encoders ...string) Status {
	result := Status{
		Name:        "FFmpeg encoders",
		Command:     ffmpeg,
		Description: "Encoders used when a stream must be re-encoded",
	}

	out, err := runner.Run(ctx, command.Command{Stage: "check", Binary: ffmpeg, Args: []string{"-hide_banner", "-encoders"}})
	if err != nil {
		result.Detail = fmt.Sprintf("list encoders: %v", err)
		return result
	}

	available := parseEncoders(out.Stdout)
	var missing []string
	for _, name := range encoders {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := available[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		result.Detail = "missing " + strings.Join(missing, ", ")
		return result
	}
	result.Available = true
	result.Detail = strings.Join(encoders, ", ")
	return result
}

func parseEncoders(data []byte) map[string]struct{} {
	encoders := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(data))
	listing := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !listing {
			listing = strings.HasPrefix(line, "------")
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields[0]) != 6 {
			continue
		}
		encoders[fields[1]] = struct{}{}
	}
	return encoders
}
