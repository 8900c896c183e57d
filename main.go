package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/reviewbotci/lintbridge/internal/app"
)

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func ignoreError[V any, E error](res V, _ E) V {
	return res
}

var (
	WarningBuffer = bytes.NewBuffer([]byte{})
	InfoBuffer    = bytes.NewBuffer([]byte{})
)

var (
	gh_token = flag.String("token", getEnv("INPUT_GITHUB-TOKEN", ""), "GitHub authentication token")
	repo_dir = flag.String("dir", getEnv("GITHUB_WORKSPACE", "/"), "Path to local Git repo")
	pr       = flag.Int("pr", ignoreError(strconv.Atoi(getEnv("INPUT_PR", ""))), "Pull Request number")
	gh_repo  = flag.String("repo", getEnv("INPUT_REPOSITORY", ""), "GitHub repo name")
	verbose  = flag.Bool("v", ignoreError(strconv.ParseBool(getEnv("INPUT_VERBOSE", "0"))), "Verbose output")
)

// shouldFail should always be true for errors that are not recoverable
func errorAndExit(shouldFail bool, format string, args ...interface{}) {
	_, err := WarningBuffer.WriteTo(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing warning buffer: %v\n", err)
	}
	if *verbose {
		_, err := InfoBuffer.WriteTo(os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing info buffer: %v\n", err)
		}
	}
	fmt.Fprintf(os.Stderr, format, args...)
	if shouldFail {
		os.Exit(1)
	} else {
		os.Exit(0)
	}
}

func printWarning(format string, args ...interface{}) {
	fmt.Fprintf(WarningBuffer, format, args...)
}

func init() {
	flag.Parse()
	badFlags := make([]string, 0, 3)
	if *gh_token == "" {
		badFlags = append(badFlags, "token")
	}
	if *pr == 0 {
		badFlags = append(badFlags, "pr")
	}
	if *gh_repo == "" {
		badFlags = append(badFlags, "repo")
	}
	if len(badFlags) > 0 {
		errorAndExit(true, "Required flags or environment variables not set: %s\n", badFlags)
	}
}

// writeOutput appends the run's result to GITHUB_OUTPUT when running as an
// Action; a missing GITHUB_OUTPUT means a local run and is not an error.
func writeOutput(data *app.OutputData) {
	outputFile := os.Getenv("GITHUB_OUTPUT")
	if outputFile == "" {
		return
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		printWarning("WARNING: Error marshaling output data: %v\n", err)
		return
	}
	file, err := os.OpenFile(outputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		printWarning("WARNING: Error opening GITHUB_OUTPUT: %v\n", err)
		return
	}
	defer func() {
		_ = file.Close()
	}()
	fmt.Fprintf(file, "review=%s\n", jsonData)
}

func main() {
	reviewApp, err := app.New(app.Config{
		Token:         *gh_token,
		RepoDir:       *repo_dir,
		PR:            *pr,
		Repo:          *gh_repo,
		Verbose:       *verbose,
		InfoBuffer:    InfoBuffer,
		WarningBuffer: WarningBuffer,
	})
	if err != nil {
		errorAndExit(true, "Setup Error: %v\n", err)
	}

	outputData, err := reviewApp.Run()
	if err != nil {
		errorAndExit(true, "%v\n", err)
	}
	writeOutput(outputData)

	_, err = WarningBuffer.WriteTo(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing warning buffer: %v\n", err)
	}
	if *verbose {
		_, err = InfoBuffer.WriteTo(os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing info buffer: %v\n", err)
		}
	}

	if !outputData.Success {
		fmt.Fprintf(os.Stderr, "FAIL: %s\n", outputData.Message)
		os.Exit(1)
	}
	fmt.Println(outputData.Message)
}
