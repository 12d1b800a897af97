package expand

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"relayforge/internal/infra"
)

// FFmpeg shells out to the ffmpeg binary for re-encoding. Each call works in
// its own temp directory, removed on success and failure alike.
type FFmpeg struct {
	bin    string
	logger infra.Logger
}

func NewFFmpeg(bin string, logger infra.Logger) *FFmpeg {
	if strings.TrimSpace(bin) == "" {
		bin = "ffmpeg"
	}
	return &FFmpeg{bin: bin, logger: logger}
}

// Available reports whether the configured binary can be found on PATH.
func (f *FFmpeg) Available() bool {
	_, err := exec.LookPath(f.bin)
	return err == nil
}

func (f *FFmpeg) Resize(ctx context.Context, src []byte, srcExt string, target Target) ([]byte, error) {
	dir, err := os.MkdirTemp("", "relayforge-expand-")
	if err != nil {
		return nil, fmt.Errorf("expand: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if srcExt == "" {
		srcExt = ".mp4"
	}
	inPath := filepath.Join(dir, "in"+srcExt)
	outPath := filepath.Join(dir, target.Name+".mp4")
	if err := os.WriteFile(inPath, src, 0o644); err != nil {
		return nil, fmt.Errorf("expand: write source: %w", err)
	}

	// Scale to fit, then pad to the exact target frame so the aspect ratio
	// is honored without cropping content.
	filter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		target.Width, target.Height, target.Width, target.Height,
	)
	args := []string{
		"-y",
		"-i", inPath,
		"-vf", filter,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		outPath,
	}

	cmd := exec.CommandContext(ctx, f.bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("expand: ffmpeg %s: %w: %s", target.Name, err, tail(out, 400))
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("expand: read output: %w", err)
	}
	return data, nil
}

func tail(out []byte, n int) string {
	s := strings.TrimSpace(string(out))
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

var _ Transcoder = (*FFmpeg)(nil)
