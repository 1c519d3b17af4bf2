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

package pubgrub

// NewRangeVersionSet builds a VersionSet for the closed/open interval
// [lower, upper] over any embedder-supplied Version type, using the same
// interval algebra ParseVersionRange uses internally for the built-in
// SimpleVersion and SemanticVersion types. Embedders wiring their own
// version grammar (a real semver library, a date-based scheme, etc.) can
// use this instead of reimplementing interval union/intersection/complement.
func NewRangeVersionSet(lower Version, lowerInclusive bool, upper Version, upperInclusive bool) VersionSet {
	return intervalSetFromBounds(newLowerBound(lower, lowerInclusive), newUpperBound(upper, upperInclusive))
}

// NewAtLeastVersionSet builds a VersionSet for versions >= lower (or > lower
// when lowerInclusive is false), unbounded above.
func NewAtLeastVersionSet(lower Version, lowerInclusive bool) VersionSet {
	return intervalSetFromBounds(newLowerBound(lower, lowerInclusive), positiveInfinityBound())
}

// NewAtMostVersionSet builds a VersionSet for versions <= upper (or < upper
// when upperInclusive is false), unbounded below.
func NewAtMostVersionSet(upper Version, upperInclusive bool) VersionSet {
	return intervalSetFromBounds(negativeInfinityBound(), newUpperBound(upper, upperInclusive))
}
