/*
Copyright 2025 The Reckon Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/minitug/reckon"
	"github.com/minitug/reckon/config"
	"github.com/minitug/reckon/database"
)

// Reckon represents the CLI application, encapsulating the root Cobra command.
type Reckon struct {
	cmd *cobra.Command
}

// reckonInstance holds the engine instance and its configuration for use by
// subcommands.
type reckonInstance struct {
	reckon *reckon.Reckon
	cnf    *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the engine before any
// subcommand executes.
func preRun(app *reckonInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("reckon.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newReckon, err := setupReckon(cnf)
		if err != nil {
			log.Fatal(err)
		}

		app.reckon = newReckon
		app.cnf = cnf

		return nil
	}
}

// setupReckon connects the datasource and builds the engine.
func setupReckon(cfg *config.Configuration) (*reckon.Reckon, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newReckon, err := reckon.NewReckon(db)
	if err != nil {
		return nil, fmt.Errorf("error creating reckon: %v", err)
	}
	return newReckon, nil
}

// NewCLI creates the command-line interface for the engine.
func NewCLI() *Reckon {
	var configFile string
	r := &reckonInstance{}

	var rootCmd = &cobra.Command{
		Use:   "reckon",
		Short: "Reconciliation and reporting engine",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./reckon.json", "Configuration file for the engine")

	rootCmd.PersistentPreRunE = preRun(r)

	rootCmd.AddCommand(serverCommands(r))

	return &Reckon{cmd: rootCmd}
}

// executeCLI runs the root command.
func (r *Reckon) executeCLI() {
	if err := r.cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()
	cli := NewCLI()
	cli.executeCLI()
}
