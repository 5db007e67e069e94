package media

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Prober reports the duration in seconds of the media file at path.
type Prober func(ctx context.Context, path string) (float64, error)

// FFProbe returns a Prober that shells out to ffprobe.
func FFProbe(timeout time.Duration) Prober {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return func(ctx context.Context, path string) (float64, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		out, err := ffmpeg.ProbeWithTimeout(path, timeout, ffmpeg.KwArgs{})
		if err != nil {
			return 0, errors.WithMessage(err, "ffprobe failed")
		}
		return parseProbeDuration(out)
	}
}

func parseProbeDuration(out string) (float64, error) {
	var payload struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		return 0, errors.WithMessage(err, "parse ffprobe output")
	}

	raw := strings.TrimSpace(payload.Format.Duration)
	if raw == "" {
		return 0, errors.New("ffprobe output has no duration")
	}

	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.WithMessage(err, "parse duration")
	}
	return seconds, nil
}
