package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"guitar-tuner/capture"
	"guitar-tuner/session"
	"guitar-tuner/tuner"
	"guitar-tuner/wav"

	"github.com/fatih/color"
	"github.com/mdobak/go-xerrors"
)

var (
	perfectColor = color.New(color.FgGreen, color.Bold)
	closeColor   = color.New(color.FgYellow, color.Bold)
	offColor     = color.New(color.FgRed, color.Bold)
	dimColor     = color.New(color.Faint)
)

func bandColor(b tuner.Band) *color.Color {
	switch b {
	case tuner.BandPerfect:
		return perfectColor
	case tuner.BandClose:
		return closeColor
	default:
		return offColor
	}
}

func bandLabel(b tuner.Band) string {
	switch b {
	case tuner.BandPerfect:
		return "in tune"
	case tuner.BandClose:
		return "close"
	default:
		return "keep adjusting"
	}
}

// renderMeter draws the deviation needle on a fixed ±50 cent scale.
// Only the needle position is clamped; the value printed next to it is
// the real deviation.
func renderMeter(cents float64) string {
	const width = 41 // odd so the zero tick occupies a single column

	clamped := tuner.ClampToMeter(cents)
	pos := int(math.Round((clamped + tuner.MeterRangeCents) / (2 * tuner.MeterRangeCents) * float64(width-1)))

	var b strings.Builder
	b.WriteString("flat [")
	for i := 0; i < width; i++ {
		switch {
		case i == pos:
			b.WriteByte('|')
		case i == width/2:
			b.WriteByte('+')
		default:
			b.WriteByte('-')
		}
	}
	b.WriteString("] sharp")
	return b.String()
}

func printUpdate(u session.Update) {
	if u.Result == nil {
		dimColor.Println("listening... no signal")
		return
	}

	r := *u.Result
	fmt.Printf("%s  %s  %7.1f Hz -> %s (%.2f Hz, %+.1f cents)\n",
		renderMeter(r.Cents),
		bandColor(r.Band).Sprint(bandLabel(r.Band)),
		u.Frequency, u.Note, r.TargetFreq, r.Cents)
}

func listen(note string, cfg capture.Config) {
	sess, err := session.New(note)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		fmt.Println("run 'guitar-tuner notes' to list supported notes")
		os.Exit(1)
	}

	rec, err := capture.NewRecorder(cfg)
	if err != nil {
		fmt.Printf("error opening audio input: %v\n", err)
		os.Exit(1)
	}
	defer rec.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	target, _ := tuner.NoteFrequency(note)
	fmt.Printf("tuning %s (%.2f Hz), %gs buffers at %d Hz. press Ctrl-C to stop.\n",
		note, target, cfg.Seconds, cfg.SampleRate)

	if err := sess.Run(ctx, rec, printUpdate); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("stopped.")
}

// prepareWavFile resolves an input file into a readable WAV. The
// returned cleanup removes any temporary side-product (an extracted
// segment or a converted copy); it never touches the caller's file.
func prepareWavFile(path string, offset, window float64) (string, func(), error) {
	switch {
	case offset > 0 || window > 0:
		dur := window
		if dur <= 0 {
			total, err := wav.GetAudioDuration(path)
			if err != nil {
				return "", nil, fmt.Errorf("failed to read duration: %v", err)
			}
			dur = total - offset
		}
		segment, err := wav.ExtractSegmentAsWAV(path, offset, dur)
		if err != nil {
			return "", nil, err
		}
		return segment, func() { os.Remove(segment) }, nil

	case strings.ToLower(filepath.Ext(path)) != ".wav":
		converted, err := wav.ConvertToWAV(path)
		if err != nil {
			return "", nil, err
		}
		return converted, func() { os.Remove(converted) }, nil

	default:
		return path, func() {}, nil
	}
}

func analyze(path, note string, offset, window float64) {
	wavPath, cleanup, err := prepareWavFile(path, offset, window)
	if err != nil {
		fmt.Printf("error preparing audio: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	info, err := wav.ReadWavInfo(wavPath)
	if err != nil {
		fmt.Printf("error reading wav: %v\n", err)
		os.Exit(1)
	}

	frame := tuner.AudioFrame{Samples: info.Samples, SampleRate: info.SampleRate}
	freq, err := tuner.Estimate(frame)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	if meta, err := wav.GetMetadata(path); err == nil {
		if title := meta.Tags["title"]; title != "" {
			fmt.Printf("file: %s\n", title)
		}
	}

	fmt.Printf("analyzed %.1fs at %d Hz (resolution %.2f Hz)\n",
		frame.Duration(), frame.SampleRate, frame.BinWidth())

	if freq == 0 {
		dimColor.Println("no signal detected")
		return
	}

	result, err := tuner.Compare(freq, note)
	if err != nil {
		if errors.Is(err, tuner.ErrUnknownNote) {
			fmt.Printf("error: %v\nrun 'guitar-tuner notes' to list supported notes\n", err)
		} else {
			fmt.Printf("error: %v\n", err)
		}
		os.Exit(1)
	}

	printUpdate(session.Update{Note: note, Frequency: freq, Result: &result})
}

func notes() {
	fmt.Println("supported target notes (standard guitar tuning):")
	for _, n := range tuner.StandardTuning {
		fmt.Printf("  %s  %7.2f Hz\n", color.CyanString("%-3s", n.Name), n.Frequency)
	}
}

func serve(port string) {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/analyze", handleAnalyze)
	mux.HandleFunc("/api/compare", handleCompare)
	mux.HandleFunc("/api/notes", handleNotes)

	mux.Handle("/", http.FileServer(http.Dir("static")))

	handler := requestLogger(corsMiddleware(mux))

	slog.Info("starting server", "port", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		slog.Error("server error", slog.Any("error", xerrors.New(err)))
		os.Exit(1)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: 200}
		next.ServeHTTP(rec, r)

		// skip noisy static file logs
		if strings.HasPrefix(r.URL.Path, "/api/") {
			slog.Info("request handled",
				"method", r.Method, "path", r.URL.Path,
				"status", rec.status, "duration", time.Since(start).String())
		}
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
