package provider

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"regexp"
	"time"

	"github.com/BurntToasters/IYERIS-sub000/internal/debug"
)

// LocalMedia reads file content from the local filesystem and captures video
// frames by shelling out to ffmpeg.
type LocalMedia struct {
	FFmpegPath string
}

// NewLocalMedia creates a media provider using the given ffmpeg binary.
func NewLocalMedia(ffmpegPath string) *LocalMedia {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &LocalMedia{FFmpegPath: ffmpegPath}
}

// ReadFileBytes reads a whole file, refusing files larger than maxBytes.
// The size gate runs on the stat result before any content is read.
func (m *LocalMedia) ReadFileBytes(path string, maxBytes int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		debug.Log(debug.PROVIDER, "ReadFileBytes: %q is %d bytes, limit %d", path, info.Size(), maxBytes)
		return nil, ErrTooLarge
	}
	return os.ReadFile(path)
}

// durationRe matches ffmpeg's "Duration: HH:MM:SS.cc" stderr line
var durationRe = regexp.MustCompile(`Duration: (\d{2}):(\d{2}):(\d{2})\.(\d{2})`)

// CaptureVideoFrame decodes a single frame from the middle of the video.
// The context bounds the whole capture; callers wrap it with their timeout.
func (m *LocalMedia) CaptureVideoFrame(ctx context.Context, path string) (image.Image, error) {
	duration, err := m.videoDuration(ctx, path)
	if err != nil {
		// Fall back to 1 second in if duration parsing fails
		duration = time.Second
	}

	seek := duration / 2
	seekStr := fmt.Sprintf("%02d:%02d:%02d.%03d",
		int(seek.Hours()),
		int(seek.Minutes())%60,
		int(seek.Seconds())%60,
		seek.Milliseconds()%1000)

	// -ss before -i is input seeking: less accurate but much faster,
	// which is the right trade for thumbnails.
	cmd := exec.CommandContext(ctx, m.FFmpegPath,
		"-ss", seekStr, "-i", path, "-vframes", "1", "-f", "image2", "-strict", "unofficial", "-")
	var buf bytes.Buffer
	cmd.Stdout = &buf
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ffmpeg frame capture: %w", err)
	}

	img, _, err := image.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode captured frame: %w", err)
	}
	return img, nil
}

// videoDuration parses the media duration from ffmpeg's stderr banner.
func (m *LocalMedia) videoDuration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, m.FFmpegPath, "-i", path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// Run usually fails because no output file is specified, but the
	// banner with the duration is still printed.
	_ = cmd.Run()

	matches := durationRe.FindStringSubmatch(stderr.String())
	if len(matches) < 5 {
		return 0, fmt.Errorf("could not find duration in ffmpeg output")
	}

	var hours, minutes, seconds, centiseconds int
	fmt.Sscanf(matches[1], "%d", &hours)
	fmt.Sscanf(matches[2], "%d", &minutes)
	fmt.Sscanf(matches[3], "%d", &seconds)
	fmt.Sscanf(matches[4], "%d", &centiseconds)

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(centiseconds*10)*time.Millisecond, nil
}
