// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// Package logging builds the zap loggers used by the command line tool and
// the HTTP service.
package logging

import "go.uber.org/zap"

// New returns a development logger (console output, debug level) when debug
// is set and a production logger (JSON, info level) otherwise.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	// Converted documents go to stdout.
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// Must is New for main packages: it falls back to a no-op logger instead
// of failing.
func Must(debug bool) *zap.Logger {
	l, err := New(debug)
	if err != nil {
		return zap.NewNop()
	}
	return l
}
