// main package for the stitch-client command-line tool.
//
// stitch-client posts one batch of texts to a running speech-stitcher HTTP
// endpoint and prints the storage location of the assembled audio.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Flag names.
const (
	flagServer    = "server"
	flagText      = "text"
	flagTexts     = "texts"
	flagGap       = "gap"
	flagVoice     = "voice"
	flagOutputKey = "output-key"
	flagTimeout   = "timeout"
)

// Flag descriptions.
const (
	flagServerDesc    = "Base URL of the speech-stitcher HTTP endpoint"
	flagTextDesc      = "Text to synthesize (repeatable, in order)"
	flagTextsDesc     = "JSON file containing an array of texts to synthesize"
	flagGapDesc       = "Silence gap between clips in seconds"
	flagVoiceDesc     = "Voice identifier (defaults to the server's configured voice)"
	flagOutputKeyDesc = "Object store key for the result (defaults to a generated one)"
	flagTimeoutDesc   = "Request timeout"
)

// Defaults.
const (
	defaultServer  = "http://localhost:8080"
	defaultGap     = 1.0
	defaultTimeout = 5 * time.Minute
)

// Error and log messages.
const (
	errNoTextsProvided  = "at least one --text or a --texts file must be provided"
	errCannotUseBoth    = "cannot specify both --text and --texts"
	logFmtStitched      = "Stitched %v clips with a %vs gap\n"
	logFmtStoredAt      = "Stored at bucket %v, key %v\n"
	errFmtServerRefused = "server returned %s: %s"
)

const stitchPath = "/v1/stitch"

// textList collects repeated --text flags in order.
type textList []string

func (t *textList) String() string {
	return strings.Join(*t, ", ")
}

func (t *textList) Set(value string) error {
	*t = append(*t, value)

	return nil
}

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	server    string
	texts     textList
	textsFile string
	gap       float64
	voice     string
	outputKey string
	timeout   time.Duration
}

func parseFlags() appFlags {
	var flags appFlags

	flag.StringVar(&flags.server, flagServer, defaultServer, flagServerDesc)
	flag.Var(&flags.texts, flagText, flagTextDesc)
	flag.StringVar(&flags.textsFile, flagTexts, "", flagTextsDesc)
	flag.Float64Var(&flags.gap, flagGap, defaultGap, flagGapDesc)
	flag.StringVar(&flags.voice, flagVoice, "", flagVoiceDesc)
	flag.StringVar(&flags.outputKey, flagOutputKey, "", flagOutputKeyDesc)
	flag.DurationVar(&flags.timeout, flagTimeout, defaultTimeout, flagTimeoutDesc)
	flag.Parse()

	return flags
}

// resolveTexts returns the batch from either the repeated flag or the file.
func resolveTexts(flags appFlags) ([]string, error) {
	if len(flags.texts) > 0 && flags.textsFile != "" {
		return nil, errors.New(errCannotUseBoth)
	}

	if len(flags.texts) > 0 {
		return flags.texts, nil
	}

	if flags.textsFile == "" {
		flag.Usage()

		return nil, errors.New(errNoTextsProvided)
	}

	data, err := os.ReadFile(flags.textsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read texts file: %w", err)
	}

	var texts []string

	err = json.Unmarshal(data, &texts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse texts JSON: %w", err)
	}

	return texts, nil
}

func run() error {
	_ = godotenv.Load()

	flags := parseFlags()

	texts, err := resolveTexts(flags)
	if err != nil {
		return err
	}

	requestBody, err := json.Marshal(map[string]any{
		"texts":      texts,
		"gapSeconds": flags.gap,
		"voiceId":    flags.voice,
		"outputKey":  flags.outputKey,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), flags.timeout)
	defer cancel()

	url := strings.TrimRight(flags.server, "/") + stitchPath

	request, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		url,
		bytes.NewBuffer(requestBody),
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	request.Header.Set("Content-Type", "application/json")

	response, err := http.DefaultClient.Do(request)
	if err != nil {
		return fmt.Errorf("failed to reach speech-stitcher at %s: %w", flags.server, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf(errFmtServerRefused, response.Status, string(responseBody))
	}

	return printResult(responseBody)
}

func printResult(responseBody []byte) error {
	var result map[string]any

	err := json.Unmarshal(responseBody, &result)
	if err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Printf(logFmtStitched, result["clipCount"], result["gapSeconds"])
	fmt.Printf(logFmtStoredAt, result["bucket"], result["key"])

	return nil
}

func main() {
	err := run()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}
