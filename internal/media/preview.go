package media

import (
	"context"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// PreviewGenerator derives a still-frame preview for a stored video asset.
// Generate returns the preview's relative path, or "" when no preview could
// be produced; generation failures are never fatal to the caller.
type PreviewGenerator interface {
	Generate(srcRelPath string) string
}

// PreviewPathFor maps an asset's relative path to its preview's relative
// path: the previews/ subtree mirrors the asset tree with a .jpg extension.
func PreviewPathFor(srcRelPath string) string {
	ext := filepath.Ext(srcRelPath)
	return "previews/" + strings.TrimSuffix(srcRelPath, ext) + ".jpg"
}

// FFmpegGenerator shells out to ffmpeg to grab a frame half a second in.
// It only works against a disk-backed store; remote stores report absence.
type FFmpegGenerator struct {
	Timeout time.Duration
}

func NewFFmpegGenerator(timeout time.Duration) *FFmpegGenerator {
	return &FFmpegGenerator{Timeout: timeout}
}

func (g *FFmpegGenerator) Generate(srcRelPath string) string {
	src, ok := Files.LocalPath(srcRelPath)
	if !ok {
		return ""
	}

	previewRel := PreviewPathFor(srcRelPath)
	dst, ok := Files.LocalPath(previewRel)
	if !ok {
		return ""
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		log.Printf("⚠️ Preview dir for %s: %v", srcRelPath, err)
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-ss", "00:00:00.5",
		"-i", src,
		"-frames:v", "1",
		"-vf", "scale=640:-1",
		"-update", "1",
		dst,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		log.Printf("⚠️ ffmpeg failed for %s: %v: %s", srcRelPath, err, truncate(string(out), 400))
		return ""
	}

	// ffmpeg can exit zero without writing a frame on broken inputs.
	if info, err := os.Stat(dst); err != nil || info.Size() == 0 {
		log.Printf("⚠️ ffmpeg produced no output for %s", srcRelPath)
		return ""
	}
	return previewRel
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
