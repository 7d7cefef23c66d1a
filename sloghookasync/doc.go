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

// Package sloghookasync moves log writes off the calling goroutine. A
// wrapped handler queues records on a bounded channel and worker goroutines
// forward them to the inner handler, so decorator hooks on hot paths only
// pay for an enqueue.
//
// Basic usage:
//
//	backend, _ := sloghook.NewHandler(os.Stdout)
//	async := sloghookasync.Wrap(backend,
//		sloghookasync.WithQueueSize(4096),
//		sloghookasync.WithDropMode(sloghookasync.DropModeDropNewest),
//	)
//	defer async.(*sloghookasync.Handler).Close()
//	reg := sloghook.NewRegistry(async)
//
// The same wrapper is available as sloghook.WithAsync when building the
// backend handler, in which case Handler.Close flushes it.
//
// [WithEnv] overlays the following environment variables, read with
// cleanenv:
//   - SLOGHOOK_ASYNC_ENABLED: true/false to toggle the wrapper
//   - SLOGHOOK_ASYNC_QUEUE_SIZE: channel capacity (0 makes the queue unbuffered)
//   - SLOGHOOK_ASYNC_DROP_MODE: block | drop_newest | drop_oldest
//   - SLOGHOOK_ASYNC_WORKERS: number of worker goroutines
//   - SLOGHOOK_ASYNC_FLUSH_TIMEOUT: duration string used by Close
package sloghookasync
