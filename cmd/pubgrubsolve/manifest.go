// Copyright 2025 Contriboss
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

package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	pubgrub "github.com/contriboss-labs/pubgrub-solver"
	"github.com/contriboss-labs/pubgrub-solver/semverset"
)

// manifest is the on-disk shape a solve manifest takes: a list of root
// requirements and an inline registry of every package version the solve
// is allowed to consider. It exists purely as CLI glue; the solver itself
// only ever sees pubgrub.Source and pubgrub.Term values built from it.
type manifest struct {
	Root         []requirement                  `yaml:"root"`
	Packages     map[string]map[string]pkgEntry `yaml:"packages"`
	AllowMissing []string                       `yaml:"allow_missing"`
}

type requirement struct {
	Name  string `yaml:"name"`
	Range string `yaml:"range"`
}

type pkgEntry struct {
	Dependencies []requirement `yaml:"dependencies"`
}

// loadManifest reads and parses a YAML manifest file.
func loadManifest(path string) (*manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}

	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrapf(err, "parsing manifest %s", path)
	}
	return &m, nil
}

// buildSource turns a manifest's inline registry into an InMemorySource of
// semverset-typed versions and constraints, alongside a RootSource seeded
// from the manifest's root requirements.
func buildSource(m *manifest) (*pubgrub.RootSource, *pubgrub.InMemorySource, error) {
	source := &pubgrub.InMemorySource{}

	for pkgName, versions := range m.Packages {
		name := semverset.CanonicalName(pkgName)
		for verStr, entry := range versions {
			ver, err := semverset.Parse(verStr)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "package %s version %s", pkgName, verStr)
			}

			deps, err := buildTerms(entry.Dependencies)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "package %s version %s dependencies", pkgName, verStr)
			}

			source.AddPackage(name, ver, deps)
		}
	}

	root := pubgrub.NewRootSource()
	for _, req := range m.Root {
		cond, err := semverset.ParseConstraint(req.Range)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "root requirement %s", req.Name)
		}
		root.AddPackage(semverset.CanonicalName(req.Name), cond)
	}

	return root, source, nil
}

func buildTerms(reqs []requirement) ([]pubgrub.Term, error) {
	terms := make([]pubgrub.Term, 0, len(reqs))
	for _, req := range reqs {
		cond, err := semverset.ParseConstraint(req.Range)
		if err != nil {
			return nil, errors.Wrapf(err, "dependency %s", req.Name)
		}
		terms = append(terms, pubgrub.NewTerm(semverset.CanonicalName(req.Name), cond))
	}
	return terms, nil
}

// allowMissingSet turns the manifest's allow_missing list into the
// predicate WithAllowMissing expects.
func allowMissingSet(names []string) func(pubgrub.Name) bool {
	set := make(map[pubgrub.Name]bool, len(names))
	for _, n := range names {
		set[semverset.CanonicalName(n)] = true
	}
	return func(name pubgrub.Name) bool {
		return set[name]
	}
}
