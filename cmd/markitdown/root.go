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

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	markitdown "github.com/conductor-oss/markitdown-go"
	"github.com/conductor-oss/markitdown-go/internal/config"
	"github.com/conductor-oss/markitdown-go/internal/logging"
)

type rootOptions struct {
	configPath     string
	debug          bool
	output         string
	extension      string
	sourceURL      string
	mimeType       string
	charset        string
	keepDataURIs   bool
	transcript     bool
	transcriptLang string
	keepExtracted  bool
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "markitdown [source]",
		Short: "Convert documents to Markdown",
		Long: `markitdown converts files, URLs and standard input to Markdown.

The source may be a local path, a file:// URL or an http(s) URL. Without a
source the document is read from standard input and --extension is required.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "config file path")
	pf.BoolVar(&o.debug, "debug", false, "enable debug logging")

	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "output file (default: stdout)")
	f.StringVarP(&o.extension, "extension", "x", "", "file extension hint, required for stdin")
	f.StringVarP(&o.sourceURL, "url", "u", "", "URL the input was fetched from")
	f.StringVarP(&o.mimeType, "mime-type", "m", "", "MIME type hint")
	f.StringVarP(&o.charset, "charset", "c", "", "charset hint, e.g. cp932")
	f.BoolVar(&o.keepDataURIs, "keep-data-uris", false, "keep full base64-encoded data URIs")
	f.BoolVar(&o.transcript, "youtube-transcript", false, "fetch YouTube transcripts")
	f.StringVar(&o.transcriptLang, "transcript-lang", "", "YouTube transcript language")
	f.BoolVar(&o.keepExtracted, "keep-extracted", false, "keep extracted archive directories")

	cmd.AddCommand(newServeCmd(o), newVersionCmd())
	return cmd
}

// load reads the configuration and lets explicitly set flags override it.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug = o.debug
	}
	if flags.Changed("keep-data-uris") {
		cfg.KeepDataURIs = o.keepDataURIs
	}
	if flags.Changed("youtube-transcript") {
		cfg.YouTube.Transcript = o.transcript
	}
	if flags.Changed("transcript-lang") {
		cfg.YouTube.TranscriptLanguage = o.transcriptLang
	}
	if flags.Changed("keep-extracted") {
		cfg.Archive.KeepExtracted = o.keepExtracted
	}
	return cfg, logging.Must(cfg.Debug), nil
}

func (o *rootOptions) run(cmd *cobra.Command, args []string) error {
	cfg, logger, err := o.load(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	m := markitdown.New(append(cfg.EngineOptions(), markitdown.WithLogger(logger))...)
	opts := cfg.ConverterOptions()
	opts.FileExtension = o.extension
	opts.URL = o.sourceURL
	opts.MIMEType = o.mimeType
	opts.Charset = o.charset

	ctx := cmd.Context()
	var result *markitdown.DocumentConverterResult
	if len(args) == 0 {
		result, err = m.ConvertReader(ctx, cmd.InOrStdin(), opts)
	} else {
		result, err = m.Convert(ctx, args[0], opts)
	}
	if err != nil {
		return err
	}

	return writeOutput(cmd.OutOrStdout(), o.output, result.Markdown)
}

func writeOutput(stdout io.Writer, path, markdown string) error {
	if path == "" {
		_, err := fmt.Fprintln(stdout, markdown)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(markdown+"\n"), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
