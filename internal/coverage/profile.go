// Package coverage implements the cov target: run the configured test
// command, parse the resulting Go cover profile, and enforce thresholds.
package coverage

import (
	"fmt"
	"path"
	"sort"

	"golang.org/x/tools/cover"
)

// PackageCoverage aggregates statement coverage for one Go package.
type PackageCoverage struct {
	Package string
	Covered int64
	Total   int64
}

// Percent returns the package statement coverage in percent.
func (p PackageCoverage) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Covered) / float64(p.Total) * 100
}

// Summary aggregates statement coverage across a whole profile.
type Summary struct {
	Packages []PackageCoverage
	Covered  int64
	Total    int64
}

// Percent returns total statement coverage in percent.
func (s *Summary) Percent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Covered) / float64(s.Total) * 100
}

// ParseProfile reads a cover profile file (go test -coverprofile output)
// and aggregates it per package.
func ParseProfile(profilePath string) (*Summary, error) {
	profiles, err := cover.ParseProfiles(profilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cover profile %s: %w", profilePath, err)
	}
	return Summarize(profiles), nil
}

// Summarize aggregates parsed profiles per package. Statements covered by at
// least one execution count as covered (mode-independent).
func Summarize(profiles []*cover.Profile) *Summary {
	byPkg := make(map[string]*PackageCoverage)

	for _, p := range profiles {
		pkg := path.Dir(p.FileName)
		pc, ok := byPkg[pkg]
		if !ok {
			pc = &PackageCoverage{Package: pkg}
			byPkg[pkg] = pc
		}
		for _, b := range p.Blocks {
			pc.Total += int64(b.NumStmt)
			if b.Count > 0 {
				pc.Covered += int64(b.NumStmt)
			}
		}
	}

	s := &Summary{}
	for _, pc := range byPkg {
		s.Covered += pc.Covered
		s.Total += pc.Total
		s.Packages = append(s.Packages, *pc)
	}
	sort.Slice(s.Packages, func(i, j int) bool {
		return s.Packages[i].Package < s.Packages[j].Package
	})
	return s
}
