package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// media file information relevant to subtitle study
type Info struct {
	Path      string
	Duration  float64 // seconds
	Subtitles []SubtitleStream
}

// an embedded subtitle stream inside a media container
type SubtitleStream struct {
	Index    int // position among subtitle streams, 0-based
	Language string
	Title    string
	Codec    string
}

// defines interface for media probing and subtitle extraction
type Extractor interface {
	// retrieves container duration and embedded subtitle streams
	Probe(ctx context.Context, mediaPath string) (*Info, error)

	// extracts one embedded subtitle stream to a WebVTT file
	ExtractSubtitles(
		ctx context.Context,
		mediaPath, outputPath string,
		streamIndex int,
	) error
}

// default implementation using ffmpeg
type FFmpegExtractor struct{}

func NewExtractor() *FFmpegExtractor {
	return &FFmpegExtractor{}
}

type probeFormat struct {
	Duration string `json:"duration"`
}

type probeStream struct {
	CodecType string            `json:"codec_type"`
	CodecName string            `json:"codec_name"`
	Tags      map[string]string `json:"tags"`
}

type probeOutput struct {
	Format  probeFormat   `json:"format"`
	Streams []probeStream `json:"streams"`
}

// retrieves container duration and embedded subtitle streams
func (e *FFmpegExtractor) Probe(
	ctx context.Context,
	mediaPath string,
) (*Info, error) {
	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("media file not found: %s", mediaPath)
	}

	raw, err := ffmpeg.Probe(mediaPath)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probed probeOutput
	if err := json.Unmarshal([]byte(raw), &probed); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{Path: mediaPath}
	if probed.Format.Duration != "" {
		d, err := strconv.ParseFloat(probed.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", probed.Format.Duration, err)
		}
		info.Duration = d
	}

	subIndex := 0
	for _, s := range probed.Streams {
		if s.CodecType != "subtitle" {
			continue
		}
		info.Subtitles = append(info.Subtitles, SubtitleStream{
			Index:    subIndex,
			Language: s.Tags["language"],
			Title:    s.Tags["title"],
			Codec:    s.CodecName,
		})
		subIndex++
	}

	return info, nil
}

// extracts one embedded subtitle stream to a WebVTT file
func (e *FFmpegExtractor) ExtractSubtitles(
	ctx context.Context,
	mediaPath, outputPath string,
	streamIndex int,
) error {
	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return fmt.Errorf("media file not found: %s", mediaPath)
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	kwargs := ffmpeg.KwArgs{
		"map": fmt.Sprintf("0:s:%d", streamIndex),
		"c:s": "webvtt",
		"y":   "",
	}

	err := ffmpeg.Input(mediaPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		Run()
	if err != nil {
		return fmt.Errorf("ffmpeg subtitle extraction failed: %w", err)
	}

	return nil
}
