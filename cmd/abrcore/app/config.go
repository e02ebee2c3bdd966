// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package app

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/spf13/pflag"

	"github.com/Dash-Industry-Forum/abrcore/pkg/logging"
)

const defaultTimeoutS = 60

// ServerConfig is the host's construction-time configuration: logging,
// HTTP port, the default algorithm selector, and the path to a catalogue
// descriptor file (spec §6 "Configuration").
type ServerConfig struct {
	LogFormat string `json:"logformat"`
	LogLevel  string `json:"loglevel"`
	Port      int    `json:"port"`
	TimeoutS  int    `json:"timeouts"`
	// Algorithm is the default policy selector for sessions created
	// without an explicit ?algorithm= query parameter.
	Algorithm string `json:"algorithm"`
	// CataloguePath points to a JSON catalogue descriptor file (spec §6).
	CataloguePath string `json:"cataloguepath"`
}

var DefaultConfig = ServerConfig{
	LogFormat: "text",
	LogLevel:  "INFO",
	Port:      8888,
	TimeoutS:  defaultTimeoutS,
	Algorithm: "bb",
}

type Config struct {
	Konf      *koanf.Koanf
	ServerCfg ServerConfig
}

// LoadConfig loads defaults, an optional config file, command-line flags,
// and finally environment variables (ABRCORE_-prefixed), the same
// structs/file/posflag/env koanf layering the teacher's config.go uses.
func LoadConfig(args []string, cwd string) (*ServerConfig, error) {
	k := koanf.New(".")
	defaults := DefaultConfig
	if err := k.Load(structs.Provider(defaults, "json"), nil); err != nil {
		return nil, err
	}

	f := pflag.NewFlagSet("abrcore", pflag.ContinueOnError)
	f.Usage = func() {
		parts := strings.Split(args[0], "/")
		name := parts[len(parts)-1]
		fmt.Fprintf(os.Stderr, "Run as %s [options]:\n", name)
		f.PrintDefaults()
	}

	cfgFile := f.String("cfg", "", "path to a JSON config file")
	f.Int("port", k.Int("port"), "HTTP port")
	lf := strings.Join(logging.LogFormats, ", ")
	f.String("logformat", k.String("logformat"), fmt.Sprintf("log format [%s]", lf))
	ll := strings.Join(logging.LogLevels, ", ")
	f.String("loglevel", k.String("loglevel"), fmt.Sprintf("log level [%s]", ll))
	f.Int("timeouts", k.Int("timeouts"), "timeout for all requests (seconds)")
	f.String("algorithm", k.String("algorithm"), "default quality policy selector [random, bb, minerva, target, remote]")
	f.String("cataloguepath", k.String("cataloguepath"), "path to a JSON catalogue descriptor file")
	if err := f.Parse(args[1:]); err != nil {
		return nil, fmt.Errorf("command line parse: %w", err)
	}

	if *cfgFile != "" {
		cf := file.Provider(*cfgFile)
		if err := k.Load(cf, json.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, fmt.Errorf("parsing cli: %w", err)
	}

	if err := k.Load(env.Provider("ABRCORE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "ABRCORE_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// Make cataloguepath absolute in case it is not already.
	cataloguePath := k.String("cataloguepath")
	if cataloguePath != "" && !path.IsAbs(cataloguePath) {
		cataloguePath = path.Join(cwd, cataloguePath)
		if err := k.Load(confmap.Provider(map[string]any{
			"cataloguepath": cataloguePath,
		}, "."), nil); err != nil {
			return nil, err
		}
	}

	var cfg ServerConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
