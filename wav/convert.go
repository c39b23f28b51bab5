package wav

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"guitar-tuner/utils"

	"github.com/tidwall/gjson"
)

// ConvertToWAV converts an input audio file to mono 16-bit PCM WAV at
// the configured analysis sample rate.
func ConvertToWAV(inputFilePath string) (wavFilePath string, err error) {
	_, err = os.Stat(inputFilePath)
	if err != nil {
		return "", fmt.Errorf("input file does not exist: %v", err)
	}

	rateStr := utils.GetEnv("TUNER_SAMPLE_RATE", "44100")
	rate, err := strconv.Atoi(rateStr)
	if err != nil || rate <= 0 {
		return "", fmt.Errorf("invalid TUNER_SAMPLE_RATE value %q", rateStr)
	}

	fileExt := filepath.Ext(inputFilePath)
	outputFile := strings.TrimSuffix(inputFilePath, fileExt) + ".wav"

	// Output file may already exist. If it does FFmpeg will fail as
	// it cannot edit existing files in-place. Use a temporary file.
	tmpFile := filepath.Join(filepath.Dir(outputFile), "tmp_"+filepath.Base(outputFile))
	defer os.Remove(tmpFile)

	cmd := exec.Command(
		"ffmpeg",
		"-y",
		"-i", inputFilePath,
		"-c", "pcm_s16le",
		"-ar", fmt.Sprint(rate),
		"-ac", "1",
		tmpFile,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("failed to convert to WAV: %v, output %v", err, string(output))
	}

	err = utils.MoveFile(tmpFile, outputFile)
	if err != nil {
		return "", fmt.Errorf("failed to rename temporary file to output file: %v", err)
	}

	return outputFile, nil
}

// ExtractSegmentAsWAV uses ffmpeg to pull a time slice out of any
// audio file as a mono 16-bit PCM WAV, so a tuning check can target
// one plucked string inside a longer recording.
func ExtractSegmentAsWAV(inputPath string, startSec, durationSec float64) (string, error) {
	if err := utils.CreateFolder("tmp"); err != nil {
		return "", err
	}

	outputFile := filepath.Join("tmp", fmt.Sprintf("segment_%d_%.0f.wav", time.Now().UnixNano(), startSec))

	cmd := exec.Command(
		"ffmpeg", "-y",
		"-ss", fmt.Sprintf("%.3f", startSec),
		"-t", fmt.Sprintf("%.3f", durationSec),
		"-i", inputPath,
		"-c", "pcm_s16le",
		"-ar", utils.GetEnv("TUNER_SAMPLE_RATE", "44100"),
		"-ac", "1",
		outputFile,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg segment extraction failed: %v, output: %s", err, output)
	}

	return outputFile, nil
}

// GetAudioDuration returns the duration in seconds of any audio file
// by calling ffprobe.
func GetAudioDuration(inputPath string) (float64, error) {
	cmd := exec.Command(
		"ffprobe",
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inputPath,
	)

	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration query failed: %v", err)
	}

	return strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
}

// Metadata is the container-level information ffprobe reports for an
// audio file.
type Metadata struct {
	Filename string
	Duration float64
	Tags     map[string]string
}

// GetMetadata queries ffprobe for format metadata (duration, title
// and other tags) of an audio file.
func GetMetadata(inputPath string) (*Metadata, error) {
	cmd := exec.Command(
		"ffprobe",
		"-v", "quiet",
		"-show_format",
		"-of", "json",
		inputPath,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe metadata query failed: %v", err)
	}

	format := gjson.GetBytes(out, "format")
	if !format.Exists() {
		return nil, fmt.Errorf("no format information for %s", inputPath)
	}

	meta := &Metadata{
		Filename: format.Get("filename").String(),
		Duration: format.Get("duration").Float(),
		Tags:     map[string]string{},
	}

	format.Get("tags").ForEach(func(key, value gjson.Result) bool {
		meta.Tags[strings.ToLower(key.String())] = value.String()
		return true
	})

	return meta, nil
}
