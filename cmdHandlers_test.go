package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"guitar-tuner/tuner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func needleIndex(t *testing.T, meter string) int {
	t.Helper()
	open := strings.IndexByte(meter, '[')
	idx := strings.IndexByte(meter, '|')
	if open < 0 || idx < 0 {
		t.Fatalf("meter %q has no needle", meter)
	}
	return idx - open - 1
}

func TestRenderMeterCentered(t *testing.T) {
	meter := renderMeter(0)
	assert.Equal(t, 20, needleIndex(t, meter))
	// the needle replaces the zero tick, so no '+' remains
	assert.NotContains(t, meter, "+")
}

func TestRenderMeterClampsExtremes(t *testing.T) {
	// beyond the ±50 display range the needle pins to the edge
	assert.Equal(t, 40, needleIndex(t, renderMeter(1200)))
	assert.Equal(t, 0, needleIndex(t, renderMeter(-400)))
	assert.Equal(t, 40, needleIndex(t, renderMeter(50)))
	assert.Equal(t, 0, needleIndex(t, renderMeter(-50)))
}

func TestRenderMeterDirection(t *testing.T) {
	sharp := needleIndex(t, renderMeter(25))
	flat := needleIndex(t, renderMeter(-25))
	assert.Greater(t, sharp, 20)
	assert.Less(t, flat, 20)
}

func TestPrepareWavFilePassthrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.wav")
	require.NoError(t, os.WriteFile(path, wavBytes(8192, make([]int16, 32)), 0644))

	got, cleanup, err := prepareWavFile(path, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	cleanup()
	_, err = os.Stat(path)
	assert.NoError(t, err, "cleanup must not remove the caller's file")
}

func TestPrepareWavFileRemovesConvertedCopy(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available")
	}

	// valid RIFF content behind a non-wav extension forces the
	// conversion branch
	src := filepath.Join(t.TempDir(), "tone.m4a")
	require.NoError(t, os.WriteFile(src, wavBytes(8192, make([]int16, 8192)), 0644))

	got, cleanup, err := prepareWavFile(src, 0, 0)
	require.NoError(t, err)
	require.NotEqual(t, src, got)

	_, err = os.Stat(got)
	require.NoError(t, err)

	cleanup()
	_, err = os.Stat(got)
	assert.True(t, os.IsNotExist(err), "converted copy must be removed by cleanup")

	_, err = os.Stat(src)
	assert.NoError(t, err, "original file must survive")
}

func TestBandLabels(t *testing.T) {
	assert.Equal(t, "in tune", bandLabel(tuner.BandPerfect))
	assert.Equal(t, "close", bandLabel(tuner.BandClose))
	assert.Equal(t, "keep adjusting", bandLabel(tuner.BandOff))
}
