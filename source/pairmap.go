package source

import (
	acs "github.com/go-sif/acs"
)

// PairMap is an iterator producing the FilePairs for a table
type PairMap struct {
	conf          Config
	sequence      int
	templates     []template
	jurisdictions []acs.JurisdictionRef
	next          int
}

// Generate returns a PairMap over every configured archive of every jurisdiction.
// Both archive templates produce a pair, even when they resolve to the same URL.
func Generate(conf Config, table acs.TableSpec, jurisdictions []acs.JurisdictionRef) *PairMap {
	js := make([]acs.JurisdictionRef, len(jurisdictions))
	copy(js, jurisdictions)
	return &PairMap{
		conf:          conf,
		sequence:      table.Sequence,
		templates:     conf.templates(),
		jurisdictions: js,
	}
}

// Len returns the total number of FilePairs this PairMap produces
func (pm *PairMap) Len() int {
	return len(pm.jurisdictions) * len(pm.templates)
}

// HasNext returns true iff there is another FilePair remaining
func (pm *PairMap) HasNext() bool {
	return pm.next < pm.Len()
}

// Next returns the next FilePair
func (pm *PairMap) Next() acs.FilePair {
	j := pm.jurisdictions[pm.next/len(pm.templates)]
	t := pm.templates[pm.next%len(pm.templates)]
	pm.next++
	return pm.pair(j, t)
}

// Reset rewinds this PairMap to its first FilePair
func (pm *PairMap) Reset() {
	pm.next = 0
}

// ForJurisdiction returns the FilePairs of a single jurisdiction, in template order
func (pm *PairMap) ForJurisdiction(j acs.JurisdictionRef) []acs.FilePair {
	res := make([]acs.FilePair, 0, len(pm.templates))
	for _, t := range pm.templates {
		res = append(res, pm.pair(j, t))
	}
	return res
}

// Jurisdictions returns the jurisdictions this PairMap covers, in order
func (pm *PairMap) Jurisdictions() []acs.JurisdictionRef {
	res := make([]acs.JurisdictionRef, len(pm.jurisdictions))
	copy(res, pm.jurisdictions)
	return res
}

// URLs returns every distinct archive URL, in first-use order
func (pm *PairMap) URLs() []string {
	seen := make(map[string]bool)
	var urls []string
	for _, j := range pm.jurisdictions {
		for _, t := range pm.templates {
			url := Resolve(t.url, pm.conf.Root, j.Name)
			if !seen[url] {
				seen[url] = true
				urls = append(urls, url)
			}
		}
	}
	return urls
}

func (pm *PairMap) pair(j acs.JurisdictionRef, t template) acs.FilePair {
	url := Resolve(t.url, pm.conf.Root, j.Name)
	file := FileName(pm.conf.Year, pm.conf.Release, j.Abbreviation, pm.sequence)
	return acs.FilePair{
		Jurisdiction: j,
		Size:         t.size,
		Estimate:     acs.SourceSpec{URL: url, Member: "e" + file, Kind: acs.EstimateFile},
		Margin:       acs.SourceSpec{URL: url, Member: "m" + file, Kind: acs.MarginFile},
	}
}
