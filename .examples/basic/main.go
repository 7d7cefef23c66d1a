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

// Command basic decorates a small service with the sloghook decorators and
// writes the resulting log lines to stdout.
//
// This example is both documentation, and a test for `sloghook`.
// Our Github workflow tests if any changes to `sloghook` break the example.
package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"

	"github.com/pjscruggs/sloghook"
	"github.com/pjscruggs/sloghook/intercept"
)

// errOverdrawn is returned when a withdrawal exceeds the balance.
var errOverdrawn = errors.New("insufficient funds")

// account is the service being decorated.
type account struct {
	balance int
}

// Withdraw removes amount from the balance.
func (a *account) Withdraw(_ context.Context, amount int) (int, error) {
	if amount > a.balance {
		return a.balance, errOverdrawn
	}
	a.balance -= amount
	return a.balance, nil
}

// main runs the example against stdout.
func main() {
	if err := run(os.Stdout); err != nil {
		log.Fatalf("basic example: %v", err)
	}
}

// run wires the decorators to w and performs two withdrawals, the second of
// which fails.
func run(w io.Writer) error {
	handler, err := sloghook.NewHandler(w, sloghook.WithTime(false))
	if err != nil {
		return err
	}
	defer handler.Close()

	reg := sloghook.NewRegistry(handler)
	proxy := intercept.For[account]().Use(
		sloghook.LogCalls(reg, sloghook.WithCallDetail(sloghook.CallDetailArgs)),
		sloghook.LogBenchmark(reg),
		sloghook.LogExceptions(reg),
	)

	acct := &account{balance: 100}
	withdraw := intercept.Func(proxy, "Withdraw", acct.Withdraw, "amount")

	ctx := context.Background()
	if _, err := withdraw(ctx, 40); err != nil {
		return err
	}
	if _, err := withdraw(ctx, 500); !errors.Is(err, errOverdrawn) {
		return errors.New("expected overdraft")
	}
	return nil
}
