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

package tool

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

// Executor dispatches tool calls with schema validation and flattens
// every outcome — including failures — to a plain string. The decision
// step only understands natural language, so error handling at this
// layer means producing a clear diagnostic string, never a raised
// error. Structured failures stay available to the bridge via Result.
type Executor struct {
	registry *Registry
	logger   *zap.Logger

	totalCalls  atomic.Int64
	totalErrors atomic.Int64
}

// NewExecutor creates an executor over a registry.
func NewExecutor(registry *Registry, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		registry: registry,
		logger:   logger,
	}
}

// Execute validates parameters against the tool's schema, runs the
// tool, and returns the typed result. The error return is reserved for
// executor-level faults (unknown tool, schema machinery); tool failures
// come back as a Result with Success=false.
func (e *Executor) Execute(ctx context.Context, name string, params map[string]interface{}) (*Result, error) {
	tool, ok := e.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}

	if err := validateParams(tool, params); err != nil {
		return Fail("invalid_params", err.Error()), nil
	}

	start := time.Now()
	result, err := tool.Execute(ctx, params)
	latency := time.Since(start)
	e.totalCalls.Add(1)

	if err != nil {
		e.totalErrors.Add(1)
		e.logger.Warn("tool execution error",
			zap.String("tool", name),
			zap.Duration("latency", latency),
			zap.Error(err))
		return Fail("execution_error", err.Error()), nil
	}
	if result == nil {
		result = Ok("")
	}
	if !result.Success {
		e.totalErrors.Add(1)
	}

	e.logger.Debug("tool executed",
		zap.String("tool", name),
		zap.Bool("success", result.Success),
		zap.Duration("latency", latency))

	return result, nil
}

// ExecuteToString runs a tool and flattens the outcome to the string
// the decision step will see.
func (e *Executor) ExecuteToString(ctx context.Context, name string, params map[string]interface{}) string {
	result, err := e.Execute(ctx, name, params)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return Flatten(result)
}

// Flatten renders a typed result as the plain string handed to the
// decision step.
func Flatten(result *Result) string {
	if result == nil {
		return ""
	}
	if !result.Success {
		if result.Error != nil {
			return fmt.Sprintf("Error (%s): %s", result.Error.Code, result.Error.Message)
		}
		return "Error: tool failed"
	}
	if s, ok := result.Data.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", result.Data)
}

// validateParams checks params against the tool's declared schema.
func validateParams(tool Tool, params map[string]interface{}) error {
	schema := tool.InputSchema()
	if schema == nil {
		return nil
	}
	schemaJSON, err := schema.ToJSON()
	if err != nil {
		return fmt.Errorf("invalid schema for tool %s: %w", tool.Name(), err)
	}
	if params == nil {
		params = map[string]interface{}{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(params))
	if err != nil {
		return fmt.Errorf("schema validation failed for tool %s: %w", tool.Name(), err)
	}
	if !result.Valid() {
		desc := ""
		for _, issue := range result.Errors() {
			if desc != "" {
				desc += "; "
			}
			desc += issue.String()
		}
		return fmt.Errorf("invalid parameters for tool %s: %s", tool.Name(), desc)
	}
	return nil
}
