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

package diskcache

import (
	"testing"

	pubgrub "github.com/contriboss-labs/pubgrub-solver"
)

// countingSource counts GetVersions calls so tests can assert the wrapped
// source is only ever consulted once per package across process runs.
type countingSource struct {
	inner *pubgrub.InMemorySource
	calls int
}

func (c *countingSource) GetVersions(name pubgrub.Name) ([]pubgrub.Version, error) {
	c.calls++
	return c.inner.GetVersions(name)
}

func (c *countingSource) GetDependencies(name pubgrub.Name, version pubgrub.Version) ([]pubgrub.Term, error) {
	return c.inner.GetDependencies(name, version)
}

// simpleCodec round-trips pubgrub.SimpleVersion through its string form.
type simpleCodec struct{}

func (simpleCodec) Encode(v pubgrub.Version) string { return v.String() }

func (simpleCodec) Decode(_ pubgrub.Name, s string) (pubgrub.Version, error) {
	return pubgrub.SimpleVersion(s), nil
}

func TestSourcePersistsAcrossInstances(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	inner := &pubgrub.InMemorySource{}
	inner.AddPackage(pubgrub.MakeName("A"), pubgrub.SimpleVersion("1.0.0"), nil)
	inner.AddPackage(pubgrub.MakeName("A"), pubgrub.SimpleVersion("2.0.0"), nil)
	counting := &countingSource{inner: inner}

	first, err := New(dir, counting, simpleCodec{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	versions, err := first.GetVersions(pubgrub.MakeName("A"))
	if err != nil {
		t.Fatalf("GetVersions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(versions))
	}
	if counting.calls != 1 {
		t.Fatalf("expected 1 call to the wrapped source, got %d", counting.calls)
	}

	// A fresh Source over the same directory should read the persisted
	// entry without touching the wrapped source at all.
	second, err := New(dir, counting, simpleCodec{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	versions2, err := second.GetVersions(pubgrub.MakeName("A"))
	if err != nil {
		t.Fatalf("GetVersions: %v", err)
	}
	if len(versions2) != 2 {
		t.Fatalf("expected 2 versions from disk, got %d", len(versions2))
	}
	if counting.calls != 1 {
		t.Fatalf("expected the wrapped source to still have been called once, got %d", counting.calls)
	}
}

func TestSourceMemoAvoidsRereadingDisk(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	inner := &pubgrub.InMemorySource{}
	inner.AddPackage(pubgrub.MakeName("A"), pubgrub.SimpleVersion("1.0.0"), nil)
	counting := &countingSource{inner: inner}

	source, err := New(dir, counting, simpleCodec{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := source.GetVersions(pubgrub.MakeName("A")); err != nil {
		t.Fatalf("GetVersions: %v", err)
	}
	if _, err := source.GetVersions(pubgrub.MakeName("A")); err != nil {
		t.Fatalf("GetVersions: %v", err)
	}
	if counting.calls != 1 {
		t.Fatalf("expected 1 call to the wrapped source across both lookups, got %d", counting.calls)
	}
}

func TestSourceGetDependenciesAlwaysDelegates(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	v1 := pubgrub.SimpleVersion("1.0.0")
	inner := &pubgrub.InMemorySource{}
	deps := []pubgrub.Term{pubgrub.NewTerm(pubgrub.MakeName("B"), pubgrub.EqualsCondition{Version: v1})}
	inner.AddPackage(pubgrub.MakeName("A"), v1, deps)

	source, err := New(dir, inner, simpleCodec{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := source.GetDependencies(pubgrub.MakeName("A"), v1)
	if err != nil {
		t.Fatalf("GetDependencies: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 dependency, got %d", len(got))
	}
}

func TestStatsReportsPersistedEntries(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	inner := &pubgrub.InMemorySource{}
	inner.AddPackage(pubgrub.MakeName("A"), pubgrub.SimpleVersion("1.0.0"), nil)
	inner.AddPackage(pubgrub.MakeName("B"), pubgrub.SimpleVersion("1.0.0"), nil)

	source, err := New(dir, inner, simpleCodec{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := source.GetVersions(pubgrub.MakeName("A")); err != nil {
		t.Fatalf("GetVersions: %v", err)
	}
	if _, err := source.GetVersions(pubgrub.MakeName("B")); err != nil {
		t.Fatalf("GetVersions: %v", err)
	}

	stats, err := source.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Packages != 2 {
		t.Fatalf("expected 2 persisted packages, got %d", stats.Packages)
	}
	if stats.Bytes == 0 {
		t.Fatal("expected a nonzero cache footprint")
	}
	t.Logf("cache: %s across %d packages", stats.HumanSize, stats.Packages)
}
