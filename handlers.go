package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"guitar-tuner/tuner"
	"guitar-tuner/utils"
	"guitar-tuner/wav"

	"github.com/buger/jsonparser"
	"github.com/mdobak/go-xerrors"
)

const (
	maxUploadSize  = 50 << 20 // 50 MB
	maxCompareBody = 1 << 16
)

type analyzeResponse struct {
	Note       string              `json:"note"`
	Signal     bool                `json:"signal"`
	Frequency  float64             `json:"frequency"`
	Resolution float64             `json:"resolutionHz"`
	Result     *tuner.TuningResult `json:"result,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError logs the failure with its stack trace (see utils.NewLogger)
// and reports the message to the client.
func writeError(w http.ResponseWriter, status int, err error) {
	slog.Error("request failed", "status", status, slog.Any("error", err))
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func saveUploadedFile(r *http.Request) (string, string, int64, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", 0, fmt.Errorf("no file provided: %v", err)
	}
	defer file.Close()

	if err := utils.CreateFolder("tmp"); err != nil {
		return "", "", 0, fmt.Errorf("failed to create tmp dir: %v", err)
	}

	tmpPath := filepath.Join("tmp", fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(header.Filename)))
	dst, err := os.Create(tmpPath)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to create temp file: %v", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to write file: %v", err)
	}

	return tmpPath, header.Filename, written, nil
}

// handleAnalyze accepts a multipart audio upload plus a target note
// and runs the full estimate-and-compare pipeline on it.
func handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, xerrors.New("method not allowed"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, xerrors.New("file too large or invalid form"))
		return
	}

	note := r.FormValue("note")
	if note == "" {
		writeError(w, http.StatusBadRequest, xerrors.New("missing 'note' form field"))
		return
	}
	if _, ok := tuner.NoteFrequency(note); !ok {
		writeError(w, http.StatusBadRequest, xerrors.New(fmt.Sprintf("unknown note %q", note)))
		return
	}

	tmpPath, filename, fileSize, err := saveUploadedFile(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, xerrors.New(err))
		return
	}
	defer os.Remove(tmpPath)

	slog.Info("analyzing upload", "file", filename, "bytes", fileSize, "note", note)

	wavPath := tmpPath
	if strings.ToLower(filepath.Ext(tmpPath)) != ".wav" {
		converted, err := wav.ConvertToWAV(tmpPath)
		if err != nil {
			writeError(w, http.StatusBadRequest, xerrors.New(fmt.Errorf("could not decode audio: %v", err)))
			return
		}
		defer os.Remove(converted)
		wavPath = converted
	}

	info, err := wav.ReadWavInfo(wavPath)
	if err != nil {
		writeError(w, http.StatusBadRequest, xerrors.New(fmt.Errorf("could not read wav: %v", err)))
		return
	}

	frame := tuner.AudioFrame{Samples: info.Samples, SampleRate: info.SampleRate}
	freq, err := tuner.Estimate(frame)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, xerrors.New(err))
		return
	}

	resp := analyzeResponse{
		Note:       note,
		Frequency:  freq,
		Resolution: frame.BinWidth(),
	}

	// 0 Hz means the DC bin dominated: a valid "no signal" outcome
	// that must not be forwarded to the comparator.
	if freq > 0 {
		result, err := tuner.Compare(freq, note)
		if err != nil {
			writeError(w, http.StatusInternalServerError, xerrors.New(err))
			return
		}
		resp.Signal = true
		resp.Result = &result
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleCompare runs the comparator alone on a caller-supplied
// frequency, for clients that do their own pitch detection.
func handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, xerrors.New("method not allowed"))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCompareBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, xerrors.New("could not read request body"))
		return
	}

	frequency, err := jsonparser.GetFloat(body, "frequency")
	if err != nil {
		writeError(w, http.StatusBadRequest, xerrors.New("missing or invalid 'frequency' field"))
		return
	}

	note, err := jsonparser.GetString(body, "note")
	if err != nil {
		writeError(w, http.StatusBadRequest, xerrors.New("missing or invalid 'note' field"))
		return
	}

	result, err := tuner.Compare(frequency, note)
	if err != nil {
		switch {
		case errors.Is(err, tuner.ErrUnknownNote):
			writeError(w, http.StatusNotFound, xerrors.New(err))
		case errors.Is(err, tuner.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, xerrors.New(err))
		default:
			writeError(w, http.StatusInternalServerError, xerrors.New(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func handleNotes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, xerrors.New("method not allowed"))
		return
	}

	writeJSON(w, http.StatusOK, tuner.StandardTuning)
}
