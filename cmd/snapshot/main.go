// snapshot: one-shot capture-and-detect probe.
//
// Captures a single frame (or reads one from a file) and submits it to the
// inference endpoint. Useful for checking a deployment end to end.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/wakeguard/go-wakeguard/internal/config"
	"github.com/wakeguard/go-wakeguard/internal/log"
	"github.com/wakeguard/go-wakeguard/pkg/capture"
	"github.com/wakeguard/go-wakeguard/pkg/detect"
)

var (
	endpoint = flag.String("endpoint", "", "inference endpoint URL (default: WAKEGUARD_ENDPOINT)")
	file     = flag.String("file", "", "submit this image file instead of capturing")
	out      = flag.String("out", "", "write the annotated image here when the server returns one")
	timeout  = flag.Duration("timeout", 30*time.Second, "request timeout")
)

func main() {
	flag.Parse()
	log.Init("warn")

	url := *endpoint
	if url == "" {
		url = config.Load().Endpoint
	}
	if url == "" {
		fmt.Fprintln(os.Stderr, "Error: endpoint required (-endpoint or WAKEGUARD_ENDPOINT)")
		os.Exit(1)
	}

	source, err := openSource(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Source error: %v\n", err)
		os.Exit(1)
	}
	defer source.Close()

	detector, err := detect.NewClient(
		detect.WithEndpoint(url),
		detect.WithTimeout(*timeout),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
		os.Exit(1)
	}
	defer detector.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	frame, err := source.Capture(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Capture error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Captured %d KB\n", len(frame)/1024)

	result, err := detector.Detect(ctx, frame)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Detect error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Verdict: %s (%dms)\n", result.Summary(), result.LatencyMs)

	if result.HasAnnotatedImage() && *out != "" {
		if err := os.WriteFile(*out, result.AnnotatedImage, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Write annotated image: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Annotated image written to %s\n", *out)
	}
}

func openSource(file string) (capture.Source, error) {
	if file != "" {
		return capture.NewFileSource(file)
	}
	return capture.NewDeviceCamera(capture.DefaultConfig())
}
