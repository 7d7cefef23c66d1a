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

// Command rotating sends decorator output to a size-rotated file backed by
// lumberjack and forces one manual rotation.
//
// This example is both documentation, and a test for `sloghook`.
// Our Github workflow tests if any changes to `sloghook` break the example.
package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/pjscruggs/sloghook"
	"github.com/pjscruggs/sloghook/intercept"
)

func main() {
	if err := run("sloghook-rolling.log"); err != nil {
		log.Fatalf("rotating example: %v", err)
	}
}

// run logs a handful of calls to path, rotates, and logs once more.
func run(path string) error {
	handler, err := sloghook.NewHandler(nil,
		sloghook.WithRotatingFile(path, sloghook.RotationConfig{
			MaxSizeMB:  1,
			MaxBackups: 3,
			MaxAgeDays: 7,
		}),
		sloghook.WithMinLevel(slog.LevelInfo),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := handler.Close(); err != nil {
			log.Printf("handler close: %v", err)
		}
	}()

	reg := sloghook.NewRegistry(handler)
	proxy := intercept.New("worker").Use(sloghook.LogCallsObject(reg,
		sloghook.WithObjectDetail(sloghook.ObjectDetailMedium)))
	process := proxy.Method("Process", intercept.Param{Type: "int", Name: "index"})

	for i := range 5 {
		_ = proxy.Invoke(context.Background(), process, []any{i}, nil)
	}
	if err := handler.Rotate(); err != nil {
		return err
	}
	reg.Logger("worker").Info("log rotation complete")
	return nil
}
