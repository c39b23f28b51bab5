package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"guitar-tuner/capture"
	"guitar-tuner/utils"

	"github.com/joho/godotenv"
)

func main() {
	_ = utils.CreateFolder("tmp")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	_ = godotenv.Load()
	slog.SetDefault(utils.NewLogger())

	switch os.Args[1] {
	case "listen":
		listenCmd := flag.NewFlagSet("listen", flag.ExitOnError)
		note := listenCmd.String("note", "E2", "target note (E2, A2, D3, G3, B3, E4)")
		seconds := listenCmd.Float64("seconds", defaultSeconds(), "capture buffer length in seconds")
		rate := listenCmd.Int("rate", defaultSampleRate(), "capture sample rate in Hz")
		listenCmd.Parse(os.Args[2:])
		listen(*note, capture.Config{SampleRate: *rate, Seconds: *seconds})

	case "analyze":
		analyzeCmd := flag.NewFlagSet("analyze", flag.ExitOnError)
		note := analyzeCmd.String("note", "E2", "target note (E2, A2, D3, G3, B3, E4)")
		offset := analyzeCmd.Float64("offset", 0, "start position in the file, seconds")
		window := analyzeCmd.Float64("seconds", 0, "length of the slice to analyze (0 = whole file)")
		analyzeCmd.Parse(os.Args[2:])
		if analyzeCmd.NArg() < 1 {
			fmt.Println("usage: guitar-tuner analyze [-note E2] [-offset 0] [-seconds 0] <path_to_audio_file>")
			os.Exit(1)
		}
		analyze(analyzeCmd.Arg(0), *note, *offset, *window)

	case "notes":
		notes()

	case "serve":
		serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
		port := serveCmd.String("p", "5000", "port to use")
		serveCmd.Parse(os.Args[2:])
		serve(*port)

	default:
		printUsage()
		os.Exit(1)
	}
}

func defaultSampleRate() int {
	if v, err := strconv.Atoi(utils.GetEnv("TUNER_SAMPLE_RATE", "44100")); err == nil && v > 0 {
		return v
	}
	return 44100
}

func defaultSeconds() float64 {
	if v, err := strconv.ParseFloat(utils.GetEnv("TUNER_CAPTURE_SECONDS", "2"), 64); err == nil && v > 0 {
		return v
	}
	return 2
}

func printUsage() {
	fmt.Println("usage: guitar-tuner <command>")
	fmt.Println()
	fmt.Println("commands:")
	fmt.Println("  listen  [-note E2] [-seconds 2] [-rate 44100]   tune live from the microphone")
	fmt.Println("  analyze [-note E2] [-offset] [-seconds] <file>  check the pitch of a recording")
	fmt.Println("  notes                                           list supported target notes")
	fmt.Println("  serve   [-p 5000]                               start the tuning API server")
}
