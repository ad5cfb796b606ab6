package media

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/suzuhara/media-api/internal/models"
)

// ffprobe's JSON output, reduced to the fields the catalog records. The raw
// document is also kept on the row for later inspection.
type probeResult struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeMedia fills width/height (and duration for video) on the row.
// Everything here is best-effort: a failed probe leaves the fields nil.
func ProbeMedia(m *models.Media, data []byte, timeout time.Duration) {
	if m.Type == models.MediaTypeVideo {
		probeVideo(m, timeout)
		return
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		w, h := cfg.Width, cfg.Height
		m.Width = &w
		m.Height = &h
	}
}

func probeVideo(m *models.Media, timeout time.Duration) {
	src, ok := Files.LocalPath(m.StoragePath)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		src,
	).Output()
	if err != nil {
		log.Printf("⚠️ ffprobe failed for %s: %v", m.StoragePath, err)
		return
	}

	var pr probeResult
	if err := json.Unmarshal(out, &pr); err != nil {
		return
	}
	m.Probe = out

	for _, s := range pr.Streams {
		if s.CodecType == "video" && s.Width > 0 {
			w, h := s.Width, s.Height
			m.Width = &w
			m.Height = &h
			break
		}
	}
	if d := strings.TrimSpace(pr.Format.Duration); d != "" {
		if f, err := strconv.ParseFloat(d, 64); err == nil {
			sec := int(f)
			m.DurationSec = &sec
		}
	}
}
