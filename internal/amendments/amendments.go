// Package amendments derives best-effort metadata for the AmendmentTracker
// sheet. Classification is heuristic and sits outside the extraction
// engine's correctness guarantees.
package amendments

import (
	"regexp"

	"github.com/tenderworks/tendertag/internal/engine"
	"github.com/tenderworks/tendertag/internal/textsource"
)

// Info is one AmendmentTracker row.
type Info struct {
	Type     string
	FileName string
	Date     string
	Notes    string
	Pages    int
}

var (
	dateRx  = regexp.MustCompile(`(\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})`)
	labelRx = regexp.MustCompile(`(?i)(Corrigendum|Addendum|Amendment)`)
)

// Describe grabs a type label and a date from the document's pages. The
// default label is kept when no keyword is found; the date stays empty when
// no date-looking token appears.
func Describe(fileName string, pages []textsource.Page) Info {
	info := Info{
		Type:     "Corrigendum/Addendum",
		FileName: fileName,
		Pages:    len(pages),
	}
	for _, p := range pages {
		if m := dateRx.FindStringSubmatch(p.Text); m != nil {
			info.Date = m[1]
			break
		}
	}
	for _, p := range pages {
		if m := labelRx.FindStringSubmatch(p.Text); m != nil {
			info.Type = engine.NormalizeSpace(m[1])
			break
		}
	}
	return info
}
