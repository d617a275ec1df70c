// Package cmd implements the opthomectl subcommands.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gmcavallazzi/opthome/pkg/common"
)

var apiTarget string

var rootCmd = &cobra.Command{
	Use:   "opthomectl",
	Short: "A CLI for talking to an opthomed server",
	Long: `opthomectl drives the dashboard API of a running opthomed instance:
listing and adding appliances, running optimizations, and exporting or
importing schedule data.`,
}

// Execute adds all child commands to the root command and runs it. Called
// once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&apiTarget, "target", "t", "http://127.0.0.1:8080", "Base URL of the opthomed API")
}

func apiClient() *http.Client {
	return common.HTTPClient(30 * time.Second)
}

// getJSON fetches target path and decodes the JSON body into out.
func getJSON(path string, out any) error {
	resp, err := apiClient().Get(apiTarget + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// postJSON posts body to target path and decodes the JSON response into out
// when out is non-nil.
func postJSON(path string, body io.Reader, out any) error {
	resp, err := apiClient().Post(apiTarget+path, "application/json", body)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func apiError(resp *http.Response) error {
	var errBody struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil && errBody.Error != "" {
		return fmt.Errorf("server responded %s: %s", resp.Status, errBody.Error)
	}
	return fmt.Errorf("server responded %s", resp.Status)
}
