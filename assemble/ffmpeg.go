package assemble

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// prepareClip rescales one clip to the target resolution and trims it to
// its planned (clamped) duration, dropping any source audio.
func (a *Assembler) prepareClip(ctx context.Context, c clip, clipsDir string) (string, error) {
	outFile := filepath.Join(clipsDir, fmt.Sprintf("prepared_%02d.mp4", c.scene+1))
	w, h := a.cfg.Video.Width, a.cfg.Video.Height

	scaleFilter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1",
		w, h, w, h,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-i", c.path,
		"-t", fmt.Sprintf("%.3f", c.duration),
		"-vf", scaleFilter,
		"-r", fmt.Sprintf("%d", a.cfg.Video.FPS),
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-an",
		outFile,
	)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg prepare clip: %w", err)
	}
	return outFile, nil
}

// concatClips joins prepared clips in scene order via a concat list file.
func (a *Assembler) concatClips(ctx context.Context, clips []clip, clipsDir string) (string, error) {
	listFile := filepath.Join(clipsDir, "concat.txt")
	var lines []string
	for _, c := range clips {
		abs, err := filepath.Abs(c.path)
		if err != nil {
			abs = c.path
		}
		lines = append(lines, fmt.Sprintf("file '%s'", abs))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return "", err
	}

	outFile := filepath.Join(clipsDir, "concatenated.mp4")
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		outFile,
	)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg concat: %w", err)
	}
	return outFile, nil
}

// applyCaptions burns every narration window onto the concatenated video
// in one drawtext pass, anchored near the bottom of the frame.
func (a *Assembler) applyCaptions(ctx context.Context, videoFile string, windows []captionWindow, clipsDir string) (string, error) {
	if len(windows) == 0 {
		return videoFile, nil
	}

	var filters []string
	for _, wnd := range windows {
		filter := fmt.Sprintf(
			"drawtext=text='%s':fontsize=%d:fontcolor=white:borderw=2:bordercolor=black:x=(w-text_w)/2:y=h*0.8:enable='between(t,%.3f,%.3f)'",
			escapeDrawtext(wnd.text), a.cfg.Assemble.CaptionFontSize, wnd.start, wnd.end,
		)
		if a.cfg.Assemble.FontFile != "" {
			filter = strings.Replace(filter, "drawtext=", "drawtext=fontfile="+a.cfg.Assemble.FontFile+":", 1)
		}
		filters = append(filters, filter)
	}

	outFile := filepath.Join(clipsDir, "captioned.mp4")
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-i", videoFile,
		"-vf", strings.Join(filters, ","),
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-an",
		outFile,
	)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg drawtext: %w", err)
	}
	return outFile, nil
}

// renderFinal encodes the finished reel, optionally under a background
// music bed and truncated to trimTo seconds when trimTo is positive.
func (a *Assembler) renderFinal(ctx context.Context, videoFile, outFile string, trimTo float64) error {
	args := []string{"-y", "-i", videoFile}

	music := a.cfg.Assemble.MusicFile
	if music != "" {
		if _, err := os.Stat(music); err != nil {
			music = ""
		}
	}
	if music != "" {
		args = append(args, "-stream_loop", "-1", "-i", music, "-map", "0:v", "-map", "1:a", "-shortest")
	}
	if trimTo > 0 {
		args = append(args, "-t", fmt.Sprintf("%.3f", trimTo))
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		"-r", fmt.Sprintf("%d", a.cfg.Video.FPS),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
		outFile,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if err := cmd.Run(); err != nil {
		os.Remove(outFile)
		return fmt.Errorf("ffmpeg render: %w", err)
	}
	return nil
}

func probeDuration(path string) (float64, error) {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, err
	}
	var dur float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &dur)
	return dur, err
}

func escapeDrawtext(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "'", "\\'")
	s = strings.ReplaceAll(s, ":", "\\:")
	s = strings.ReplaceAll(s, ",", "\\,")
	return s
}
