// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"text-anonymizer/internal/anonymizer"
	"text-anonymizer/internal/config"
	"text-anonymizer/internal/formatters"
	"text-anonymizer/internal/labels"
	"text-anonymizer/internal/ner"
	"text-anonymizer/internal/preprocessors"
	"text-anonymizer/internal/version"
	"text-anonymizer/internal/web"

	_ "text-anonymizer/internal/formatters/json"
	_ "text-anonymizer/internal/formatters/text"
)

// cliFlags holds command line flag values
type cliFlags struct {
	text        string
	file        string
	output      string
	labelList   string
	profile     string
	threshold   float64
	format      string
	configFile  string
	verbose     bool
	debug       bool
	noColor     bool
	webMode     bool
	port        string
	showVersion bool
}

func parseFlags() *cliFlags {
	flags := &cliFlags{}
	flag.StringVar(&flags.text, "text", "", "Text to anonymize")
	flag.StringVar(&flags.file, "file", "", "Input file to anonymize (.txt or .pdf)")
	flag.StringVar(&flags.output, "output", "", "Write anonymized output to this file instead of stdout")
	flag.StringVar(&flags.labelList, "labels", "", "Comma-separated detection labels (e.g. person_ner,fi_hetu_regex)")
	flag.StringVar(&flags.profile, "profile", "", "Configuration profile name")
	flag.Float64Var(&flags.threshold, "threshold", 0, "NER confidence threshold override (0 uses configured value)")
	flag.StringVar(&flags.format, "format", "", "Output format: "+strings.Join(formatters.List(), ", "))
	flag.StringVar(&flags.configFile, "config", "", "Path to configuration file")
	flag.BoolVar(&flags.verbose, "verbose", false, "Include original values in the substitution summary")
	flag.BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	flag.BoolVar(&flags.webMode, "web", false, "Run as a web server")
	flag.StringVar(&flags.port, "port", "", "Web server port (default from config)")
	flag.BoolVar(&flags.showVersion, "version", false, "Show version information")
	flag.Parse()
	return flags
}

// isFlagSet checks whether a flag was explicitly provided on the command line
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func setupLogging(debug bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	// Local overrides for NER endpoint etc.; missing .env is fine.
	_ = godotenv.Load()

	flags := parseFlags()
	if flags.showVersion {
		fmt.Println(version.Info())
		return
	}

	setupLogging(flags.debug)

	cfg := config.LoadConfigOrDefault(flags.configFile)
	if flags.debug {
		cfg.Defaults.Debug = true
	}

	mappings, err := config.LoadLabelMappings(cfg.LabelMappingsPath())
	if err != nil {
		log.Fatal().Err(err).Msg("loading label mappings")
	}

	store := config.NewProfileStore(cfg.ConfigDir)
	provider := ner.NewRetryingProvider(
		ner.NewClient(cfg.NER.Endpoint, time.Duration(cfg.NER.TimeoutSeconds)*time.Second))
	engine := anonymizer.New(cfg, store, provider, labels.NewMapper(mappings))

	if flags.webMode {
		runWebServer(flags, cfg, engine, store)
		return
	}
	runCLI(flags, cfg, engine)
}

func runWebServer(flags *cliFlags, cfg *config.Config, engine *anonymizer.Engine, store *config.ProfileStore) {
	port := cfg.Server.Port
	if flags.port != "" {
		port = flags.port
	}

	server := web.NewServer(engine, store)
	log.Info().Str("port", port).Str("version", version.Short()).Msg("starting web server")
	if err := http.ListenAndServe(":"+port, server.Routes()); err != nil {
		log.Fatal().Err(err).Msg("web server failed")
	}
}

func runCLI(flags *cliFlags, cfg *config.Config, engine *anonymizer.Engine) {
	if flags.text == "" && flags.file == "" {
		fmt.Fprintln(os.Stderr, "Error: provide -text or -file (or -web to run as a server)")
		flag.Usage()
		os.Exit(1)
	}
	if flags.text != "" && flags.file != "" {
		fmt.Fprintln(os.Stderr, "Error: -text and -file are mutually exclusive")
		os.Exit(1)
	}

	text := flags.text
	if flags.file != "" {
		extracted, err := preprocessors.ExtractText(flags.file)
		if err != nil {
			log.Fatal().Err(err).Str("file", flags.file).Msg("extracting input text")
		}
		text = extracted
	}

	var labelList []string
	if flags.labelList != "" {
		for _, label := range strings.Split(flags.labelList, ",") {
			if trimmed := strings.TrimSpace(label); trimmed != "" {
				labelList = append(labelList, trimmed)
			}
		}
	}

	result, err := engine.Anonymize(context.Background(), anonymizer.Request{
		Text:      text,
		Labels:    labelList,
		Profile:   flags.profile,
		Threshold: flags.threshold,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("anonymization failed")
	}

	format := cfg.Defaults.Format
	if isFlagSet("format") && flags.format != "" {
		format = flags.format
	}

	noColor := flags.noColor || cfg.Defaults.NoColor || flags.output != "" ||
		!term.IsTerminal(int(os.Stdout.Fd()))
	output, err := formatters.Export(format, result, formatters.Options{
		Verbose: flags.verbose || cfg.Defaults.Verbose,
		NoColor: noColor,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("formatting output")
	}

	if flags.output != "" {
		if err := os.WriteFile(flags.output, []byte(output+"\n"), 0600); err != nil {
			log.Fatal().Err(err).Str("file", flags.output).Msg("writing output file")
		}
		log.Info().Str("file", flags.output).Msg("anonymized output written")
		return
	}
	fmt.Println(output)
}
