// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os/signal"
	"strings"
	"syscall"

	"github.com/r3labs/sse/v2"
	"github.com/spf13/cobra"

	"github.com/teradata-labs/reef/pkg/event"
)

var askServerURL string

var askCmd = &cobra.Command{
	Use:   "ask <request>",
	Short: "Send a PR analysis request and stream the results",
	Long: `Sends a request to a running reef backend and streams agent
progress until the analysis completes.

Example:
  reef ask "summarize https://github.com/golang/go/pull/12345 with risk analysis"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askServerURL, "server", "http://localhost:8000", "backend server URL")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	message := strings.Join(args, " ")
	streamURL := fmt.Sprintf("%s/prompt?message=%s",
		strings.TrimRight(askServerURL, "/"), url.QueryEscape(message))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var streamErr error
	client := sse.NewClient(streamURL)

	err := client.SubscribeRawWithContext(ctx, func(msg *sse.Event) {
		done, err := renderEvent(cmd, string(msg.Event), msg.Data)
		if err != nil {
			streamErr = err
		}
		if done {
			cancel()
		}
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to subscribe to %s: %w", streamURL, err)
	}
	return streamErr
}

// renderEvent prints one stream event and reports whether the stream
// is finished.
func renderEvent(cmd *cobra.Command, name string, data []byte) (bool, error) {
	switch event.Type(name) {
	case event.TypeAction:
		var action event.Action
		if err := json.Unmarshal(data, &action); err != nil {
			cmd.Printf("  %s\n", string(data))
			return false, nil
		}
		cmd.Printf("  [%s] %s: %s (%s)\n", action.Source, action.Action, action.Detail, action.Status)
		return false, nil

	case event.TypeComplete:
		var completion event.Completion
		if err := json.Unmarshal(data, &completion); err != nil {
			cmd.Printf("%s\n", string(data))
			return true, nil
		}
		cmd.Printf("\n%s\n", completion.Output)
		if completion.RiskReport != "" {
			cmd.Printf("\nRisk report:\n%s\n", completion.RiskReport)
		}
		if completion.VoiceURL != "" {
			cmd.Printf("\nVoice-over: %s%s\n", strings.TrimRight(askServerURL, "/"), completion.VoiceURL)
		}
		return true, nil

	case event.TypeError:
		var failure event.Failure
		if err := json.Unmarshal(data, &failure); err != nil {
			return true, fmt.Errorf("analysis failed: %s", string(data))
		}
		return true, fmt.Errorf("analysis failed: %s", failure.Error)

	default:
		return false, nil
	}
}
