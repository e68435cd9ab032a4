// Command repet separates a WAV mixture into its repeating background and
// non-repeating foreground.
//
// Usage:
//
//	repet -in mixture.wav -out separated
//
// writes separated_background.wav and separated_foreground.wav. The
// repeating period is estimated from the beat spectrum unless -period (an
// exact value in seconds) or -min/-max (a search range in seconds) is given.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/jiauy/nussl/logging"
	"github.com/jiauy/nussl/repet"
)

func main() {
	inPath := flag.String("in", "", "input WAV mixture")
	outPrefix := flag.String("out", "separated", "output file prefix")
	period := flag.Float64("period", 0, "exact repeating period in seconds (skips estimation)")
	minPeriod := flag.Float64("min", 0, "minimum repeating period in seconds")
	maxPeriod := flag.Float64("max", 0, "maximum repeating period in seconds")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	logger := logging.GetGlobalLogger()
	if *verbose {
		logger.SetLevel(logging.DebugLevel)
	}

	if *inPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	mixture, sampleRate, bitDepth, err := readWAV(*inPath)
	if err != nil {
		logger.Fatal(err, "reading mixture", logging.Fields{"path": *inPath})
	}

	cfg := repet.DefaultConfig()
	cfg.Period = *period
	if *minPeriod > 0 || *maxPeriod > 0 {
		cfg.PeriodRange = [2]float64{*minPeriod, *maxPeriod}
	}

	separator := repet.New(cfg)
	background, err := separator.Separate(mixture, sampleRate)
	if err != nil {
		logger.Fatal(err, "separating mixture")
	}

	foreground := make([][]float64, len(mixture))
	for c := range mixture {
		foreground[c] = make([]float64, len(mixture[c]))
		for i := range mixture[c] {
			foreground[c][i] = mixture[c][i] - background[c][i]
		}
	}

	bgPath := *outPrefix + "_background.wav"
	if err := writeWAV(bgPath, background, sampleRate, bitDepth); err != nil {
		logger.Fatal(err, "writing background", logging.Fields{"path": bgPath})
	}

	fgPath := *outPrefix + "_foreground.wav"
	if err := writeWAV(fgPath, foreground, sampleRate, bitDepth); err != nil {
		logger.Fatal(err, "writing foreground", logging.Fields{"path": fgPath})
	}

	logger.Info("separation complete", logging.Fields{
		"background": bgPath,
		"foreground": fgPath,
		"channels":   len(mixture),
	})
}

// readWAV decodes a WAV file into per-channel float64 samples in [-1, 1)
func readWAV(path string) ([][]float64, int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to open wav file: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("invalid wav file: %s", path)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)
	numChannels := format.NumChannels
	scale := float64(int(1) << (bitDepth - 1))

	var interleaved []int
	bufferSize := 8192
	buffer := &audio.IntBuffer{
		Data:   make([]int, bufferSize),
		Format: format,
	}

	for {
		n, err := decoder.PCMBuffer(buffer)
		if err != nil && err != io.EOF {
			return nil, 0, 0, fmt.Errorf("error reading PCM: %w", err)
		}
		if n == 0 {
			break
		}
		interleaved = append(interleaved, buffer.Data[:n]...)
		if n < bufferSize {
			break
		}
	}

	if len(interleaved) == 0 {
		return nil, 0, 0, fmt.Errorf("no audio data in %s", path)
	}

	numSamples := len(interleaved) / numChannels
	channels := make([][]float64, numChannels)
	for c := range channels {
		channels[c] = make([]float64, numSamples)
		for i := 0; i < numSamples; i++ {
			channels[c][i] = float64(interleaved[i*numChannels+c]) / scale
		}
	}

	return channels, format.SampleRate, bitDepth, nil
}

// writeWAV encodes per-channel float64 samples as PCM WAV
func writeWAV(path string, channels [][]float64, sampleRate, bitDepth int) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create wav file: %w", err)
	}
	defer file.Close()

	numChannels := len(channels)
	numSamples := len(channels[0])
	scale := float64(int(1) << (bitDepth - 1))

	interleaved := make([]int, numSamples*numChannels)
	for c := range channels {
		for i, sample := range channels[c] {
			v := sample * scale
			if v > scale-1 {
				v = scale - 1
			} else if v < -scale {
				v = -scale
			}
			interleaved[i*numChannels+c] = int(v)
		}
	}

	encoder := wav.NewEncoder(file, sampleRate, bitDepth, numChannels, 1)
	buffer := &audio.IntBuffer{
		Data: interleaved,
		Format: &audio.Format{
			NumChannels: numChannels,
			SampleRate:  sampleRate,
		},
	}

	if err := encoder.Write(buffer); err != nil {
		return fmt.Errorf("error writing PCM: %w", err)
	}

	return encoder.Close()
}
