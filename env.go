// Copyright 2025 Patrick J. Scruggs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sloghook

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Environment variables read when WithEnv is supplied.
const (
	envLevel  = "SLOGHOOK_LEVEL"
	envFormat = "SLOGHOOK_FORMAT"
	envTime   = "SLOGHOOK_TIME"
	envTarget = "SLOGHOOK_TARGET"
)

// envConfig holds the raw SLOGHOOK_* values. Unset variables stay empty so
// they leave the defaults alone.
type envConfig struct {
	Level  string `env:"SLOGHOOK_LEVEL" env-description:"minimum level: trace, debug, info, warn, error, fatal"`
	Format string `env:"SLOGHOOK_FORMAT" env-description:"output format: text or json"`
	Time   string `env:"SLOGHOOK_TIME" env-description:"emit the time column: true or false"`
	Target string `env:"SLOGHOOK_TARGET" env-description:"output: stdout, stderr or file:<path>"`
}

// EnvUsage describes the environment variables honoured by WithEnv.
func EnvUsage() string {
	var cfg envConfig
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}

// applyEnv overlays SLOGHOOK_* variables on cfg. Malformed level and time
// values are reported through logger and ignored; an unknown format or
// target fails handler construction.
func applyEnv(cfg *handlerConfig, logger *slog.Logger) error {
	var env envConfig
	if err := cleanenv.ReadEnv(&env); err != nil {
		return fmt.Errorf("sloghook: read environment: %w", err)
	}

	if raw := strings.TrimSpace(env.Level); raw != "" {
		if lvl, err := ParseLevel(raw); err == nil {
			cfg.Level = lvl.Level()
		} else {
			logDiagnostic(logger, slog.LevelWarn, "invalid log level environment variable",
				slog.String("variable", envLevel), slog.String("value", raw))
		}
	}

	if raw := strings.TrimSpace(env.Format); raw != "" {
		format, err := ParseFormat(raw)
		if err != nil {
			logDiagnostic(logger, slog.LevelWarn, "unknown "+envFormat, slog.String("value", raw))
			return err
		}
		cfg.Format = format
	}

	if raw := strings.TrimSpace(env.Time); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			cfg.EmitTime = b
		} else {
			logDiagnostic(logger, slog.LevelWarn, "invalid boolean environment variable",
				slog.String("variable", envTime), slog.String("value", raw), slog.Any("error", err))
		}
	}

	return applyTargetFromEnv(cfg, env.Target, logger)
}

// applyTargetFromEnv interprets SLOGHOOK_TARGET.
func applyTargetFromEnv(cfg *handlerConfig, raw string, logger *slog.Logger) error {
	target := strings.TrimSpace(raw)
	if target == "" {
		return nil
	}

	lower := strings.ToLower(target)
	switch {
	case lower == "stdout":
		cfg.Target = &outputTarget{kind: targetWriter, writer: os.Stdout}
	case lower == "stderr":
		cfg.Target = &outputTarget{kind: targetWriter, writer: os.Stderr}
	case strings.HasPrefix(lower, "file:"):
		path := strings.TrimSpace(target[len("file:"):])
		if path == "" {
			logDiagnostic(logger, slog.LevelWarn, "empty file target", slog.String("variable", envTarget))
			return fmt.Errorf("%w: %q", ErrInvalidTarget, target)
		}
		cfg.Target = &outputTarget{kind: targetFile, path: path}
	default:
		logDiagnostic(logger, slog.LevelWarn, "unknown "+envTarget, slog.String("value", target))
		return fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}
	return nil
}

// logDiagnostic emits internal diagnostic messages, guarding against nil
// loggers in tests.
func logDiagnostic(logger *slog.Logger, level slog.Level, msg string, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	logger.LogAttrs(context.Background(), level, msg, attrs...)
}
