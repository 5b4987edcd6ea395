// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package manifest

import (
	"path/filepath"
	"sort"
	"strings"
)

// SectionStatus summarises generation progress for one top-level directory
// of the corpus (e.g. "stories", "encyclopedia").
type SectionStatus struct {
	Section   string `json:"section" yaml:"section"`
	Manifests int    `json:"manifests" yaml:"manifests"`
	Entries   int    `json:"entries" yaml:"entries"`
	Existing  int    `json:"existing" yaml:"existing"`
	Pending   int    `json:"pending" yaml:"pending"`
	Warnings  int    `json:"warnings" yaml:"warnings"`
}

// Report is the corpus-wide generation status.
type Report struct {
	Sections []SectionStatus `json:"sections" yaml:"sections"`
	Total    SectionStatus   `json:"total" yaml:"total"`
}

// Status walks every manifest under root and counts entries, existing
// outputs, and pending outputs per top-level section. Manifests directly
// in root are grouped under ".".
func Status(root string) (Report, error) {
	bySection := make(map[string]*SectionStatus)

	err := Walk(root, func(m Manifest) error {
		name := sectionOf(root, m.Dir)
		s, ok := bySection[name]
		if !ok {
			s = &SectionStatus{Section: name}
			bySection[name] = s
		}
		s.Manifests++
		s.Warnings += len(m.Warnings)
		for _, e := range m.Entries {
			s.Entries++
			exists, err := fileExists(filepath.Join(m.Dir, e.Filename))
			if err != nil {
				return err
			}
			if exists {
				s.Existing++
			} else {
				s.Pending++
			}
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}

	report := Report{Total: SectionStatus{Section: "total"}}
	for _, s := range bySection {
		report.Sections = append(report.Sections, *s)
		report.Total.Manifests += s.Manifests
		report.Total.Entries += s.Entries
		report.Total.Existing += s.Existing
		report.Total.Pending += s.Pending
		report.Total.Warnings += s.Warnings
	}
	sort.Slice(report.Sections, func(i, j int) bool {
		return report.Sections[i].Section < report.Sections[j].Section
	})
	return report, nil
}

func sectionOf(root, dir string) string {
	rel := Rel(root, dir)
	if rel == "." {
		return "."
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	return first
}
