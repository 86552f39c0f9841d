// Copyright 2021 EMQ Technologies Co., Ltd.
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

// Command hetuctl is a small CLI front-end over package pushdown:
// "optimize" reads a plan tree and a session configuration from disk,
// runs pushdown.Optimize, and prints the rewritten tree.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"

	"github.com/shobhitham/hetu-core/internal/pushdown"
	"github.com/shobhitham/hetu-core/pkg/catalog"
	"github.com/shobhitham/hetu-core/pkg/hlog"
	"github.com/shobhitham/hetu-core/pkg/plan"
)

func main() {
	app := cli.NewApp()
	app.Name = "hetuctl"
	app.Usage = "run the predicate pushdown pass over a logical plan"
	app.Commands = []cli.Command{optimizeCommand()}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func optimizeCommand() cli.Command {
	return cli.Command{
		Name:  "optimize",
		Usage: "rewrite a plan tree read from --plan and print the result",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "plan", Usage: "path to a plan tree JSON document"},
			cli.StringFlag{Name: "session", Usage: "path to a session YAML document (optional)"},
			cli.BoolFlag{Name: "verbose", Usage: "log the start and end of the pushdown traversal at debug level"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("verbose") {
				hlog.SetLevel(logrus.DebugLevel)
			}
			planPath := c.String("plan")
			if planPath == "" {
				return cli.NewExitError("missing required --plan", 1)
			}
			root, err := loadPlan(planPath)
			if err != nil {
				return cli.NewExitError(err.Error(), 1)
			}
			session, err := loadSession(c.String("session"))
			if err != nil {
				return cli.NewExitError(err.Error(), 1)
			}
			warnings := &catalog.WarningCollector{}
			rewritten, err := pushdown.Optimize(root, session, warnings)
			if err != nil {
				return cli.NewExitError(fmt.Sprintf("optimize: %v", err), 1)
			}
			for _, msg := range warnings.Messages() {
				fmt.Fprintln(os.Stderr, "warning:", msg)
			}
			out, err := plan.MarshalNodeJSON(rewritten)
			if err != nil {
				return cli.NewExitError(err.Error(), 1)
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func loadPlan(path string) (plan.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	root, err := plan.ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return root, nil
}

// sessionFile is the on-disk YAML shape loadSession reads: a
// dynamic-filtering toggle plus an optional path to a scalar-function
// catalog, mirroring how internal/conf/kuiper.yaml separates top-level
// settings from a plugin-specific sub-document.
type sessionFile struct {
	DynamicFilteringEnabled bool   `yaml:"dynamicFilteringEnabled"`
	CatalogFile             string `yaml:"catalogFile"`
}

func loadSession(path string) (*catalog.Session, error) {
	if path == "" {
		return catalog.NewSession(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var sf sessionFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cat := catalog.New()
	if sf.CatalogFile != "" {
		cat, err = catalog.LoadFile(sf.CatalogFile)
		if err != nil {
			return nil, err
		}
	}
	return &catalog.Session{DynamicFilteringEnabled: sf.DynamicFilteringEnabled, Catalog: cat}, nil
}
