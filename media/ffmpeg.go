// Package media drives the external ffmpeg concatenation engine.
package media

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	FFmpegCommand  = "ffmpeg"
	FFprobeCommand = "ffprobe"

	ffprobeLogLevel     = "error"
	ffprobeShowEntries  = "format=duration"
	ffprobeOutputFormat = "csv=p=0"

	progressPipeTarget = "pipe:2"
	progressTimePrefix = "out_time_us="

	concatListSuffix = ".files.txt"
)

// ProgressFunc observes concatenation progress in seconds of output written.
type ProgressFunc func(outSeconds, totalSeconds float64)

// Concatenator joins an ordered list of local video files into one output
// by lossless stream copy. Inputs must share compatible container/codec
// parameters; the engine does not validate this and any mismatch surfaces
// as a plain failure.
type Concatenator interface {
	Concat(ctx context.Context, inputs []string, outputPath string, onProgress ProgressFunc) error
}

type FFmpeg struct{}

func NewFFmpeg() *FFmpeg {
	return &FFmpeg{}
}

func (f *FFmpeg) Concat(ctx context.Context, inputs []string, outputPath string, onProgress ProgressFunc) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no input files")
	}

	// The list lives next to its output and shares its name, so concurrent
	// runs in one directory never touch each other's list.
	listPath := concatListPath(outputPath)
	if err := writeConcatList(listPath, inputs); err != nil {
		return err
	}
	defer os.Remove(listPath)

	var total float64
	for _, input := range inputs {
		d, err := f.probeDuration(ctx, input)
		if err != nil {
			// Progress degrades gracefully without a known total.
			total = 0
			break
		}
		total += d
	}

	cmd := exec.CommandContext(ctx, FFmpegCommand, buildConcatArgs(listPath, outputPath)...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	go monitorProgress(stderr, total, onProgress)

	if err := cmd.Wait(); err != nil {
		os.Remove(outputPath) // partial output
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg concat: %w", err)
	}
	return nil
}

// probeDuration reads a file's duration in seconds using ffprobe.
func (f *FFmpeg) probeDuration(ctx context.Context, filePath string) (float64, error) {
	cmd := exec.CommandContext(ctx, FFprobeCommand,
		"-v", ffprobeLogLevel,
		"-show_entries", ffprobeShowEntries,
		"-of", ffprobeOutputFormat,
		filePath,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("run ffprobe: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return duration, nil
}

func concatListPath(outputPath string) string {
	return outputPath + concatListSuffix
}

func buildConcatArgs(listPath, outputPath string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-progress", progressPipeTarget,
		"-nostats",
		outputPath,
	}
}

// writeConcatList writes the concat demuxer input list, one file directive
// per line with single quotes escaped.
func writeConcatList(listPath string, inputs []string) error {
	var b strings.Builder
	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			abs = input
		}
		escaped := strings.ReplaceAll(abs, "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", escaped)
	}

	if err := os.WriteFile(listPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}

// monitorProgress parses ffmpeg -progress output (out_time_us=123456).
func monitorProgress(stderr io.ReadCloser, totalSeconds float64, onProgress ProgressFunc) {
	defer stderr.Close()

	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, progressTimePrefix) {
			continue
		}

		micros, err := strconv.ParseInt(strings.TrimPrefix(line, progressTimePrefix), 10, 64)
		if err != nil {
			continue
		}

		if totalSeconds > 0 && onProgress != nil {
			out := float64(micros) / 1e6
			if out > totalSeconds {
				out = totalSeconds
			}
			onProgress(out, totalSeconds)
		}
	}
}
