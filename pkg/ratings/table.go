package ratings

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/oddsmith/futuresnap/core"
	"github.com/oddsmith/futuresnap/pkg/futures"
)

// extractHeaderTable finds the first table whose header names both a
// projected-record column and a championship-win column, builds a logical
// column → physical index map from the header, and extracts one record per
// data row that carries a team reference.
func (e *Extractor) extractHeaderTable(markup string) map[string]core.ProjectionRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	records := make(map[string]core.ProjectionRecord)

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		columns := headerColumns(table)
		if columns == nil {
			return true // keep looking
		}

		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			record, ok := e.recordFromMappedRow(row, columns)
			if ok {
				records[record.Team] = record
			}
		})
		return false
	})

	return records
}

// headerColumns maps logical column names to physical indexes from a
// table's header row. It returns nil unless both the record column and the
// championship-win column are present; without those the table is not the
// projections table.
func headerColumns(table *goquery.Selection) map[string]int {
	header := table.Find("tr").First()
	if header.Length() == 0 {
		return nil
	}

	columns := make(map[string]int)
	header.Find("th, td").Each(func(i int, cell *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(cell.Text()))
		if label == "" {
			return
		}
		for logical, aliases := range columnAliases {
			if _, taken := columns[logical]; taken {
				continue
			}
			for _, alias := range aliases {
				if strings.Contains(label, alias) {
					columns[logical] = i
					break
				}
			}
		}
	})

	if _, ok := columns["record"]; !ok {
		return nil
	}
	if _, ok := columns["champWin"]; !ok {
		return nil
	}
	return columns
}

// recordFromMappedRow extracts one ProjectionRecord from a data row using
// the header's column map.
func (e *Extractor) recordFromMappedRow(row *goquery.Selection, columns map[string]int) (core.ProjectionRecord, bool) {
	if !e.hasTeamLink(row) {
		return core.ProjectionRecord{}, false
	}

	cells := row.Find("td, th")
	if cells.Length() == 0 {
		return core.ProjectionRecord{}, false
	}

	name := teamNameFromCell(cells.First())
	if name == "" {
		return core.ProjectionRecord{}, false
	}

	record := core.ProjectionRecord{Team: futures.CanonicalName(name)}

	// Projected wins from the mapped column, or from the first cell in the
	// row matching the record pattern when the mapped cell has drifted.
	wins, ok := winsFromCells(cells, columns["record"])
	if !ok {
		return core.ProjectionRecord{}, false
	}
	record.ProjectedWins = wins

	for _, field := range canonicalProbOrder {
		idx, ok := columns[field]
		if !ok || idx >= cells.Length() {
			continue
		}
		setProbField(&record, field, parsePercentCell(cells.Eq(idx).Text()))
	}

	return record, true
}

func winsFromCells(cells *goquery.Selection, recordIdx int) (float64, bool) {
	if recordIdx < cells.Length() {
		if wins, ok := parseRecordWins(cells.Eq(recordIdx).Text()); ok {
			return wins, true
		}
	}
	for i := 0; i < cells.Length(); i++ {
		if wins, ok := parseRecordWins(cells.Eq(i).Text()); ok {
			return wins, true
		}
	}
	return 0, false
}

// extractRowScan is the last-resort strategy for pages where no header can
// be matched: every row with a team link contributes a record, taking the
// first cell as the name, the first wins–losses pattern anywhere in the row
// as the projected record, and percent tokens in order of appearance as the
// probability fields in canonical order.
func (e *Extractor) extractRowScan(markup string) map[string]core.ProjectionRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	records := make(map[string]core.ProjectionRecord)

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if !e.hasTeamLink(row) {
			return
		}
		cells := row.Find("td, th")
		if cells.Length() == 0 {
			return
		}

		name := teamNameFromCell(cells.First())
		if name == "" {
			return
		}

		rowText := row.Text()
		wins, ok := parseRecordWins(rowText)
		if !ok {
			return
		}

		record := core.ProjectionRecord{
			Team:          futures.CanonicalName(name),
			ProjectedWins: wins,
		}

		tokens := percentPattern.FindAllStringSubmatch(rowText, -1)
		for i, field := range canonicalProbOrder {
			if i >= len(tokens) {
				break
			}
			setProbField(&record, field, parsePercentCell(tokens[i][1]))
		}

		records[record.Team] = record
	})

	return records
}

func (e *Extractor) hasTeamLink(row *goquery.Selection) bool {
	found := false
	row.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		if strings.Contains(href, e.config.TeamLinkPattern) {
			found = true
			return false
		}
		return true
	})
	return found
}

// teamNameFromCell extracts the team name from a row's first cell,
// preferring visible text and falling back through accessible-label, title,
// and link-slug attributes in that order.
func teamNameFromCell(cell *goquery.Selection) string {
	if text := strings.TrimSpace(cell.Text()); text != "" {
		return text
	}
	for _, attr := range []string{"aria-label", "title"} {
		if v, ok := cell.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		if v, ok := cell.Find("[" + attr + "]").Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if href, ok := cell.Find("a[href]").Attr("href"); ok {
		return nameFromSlug(href)
	}
	return ""
}

// nameFromSlug turns a link slug ("/nfl/team/kansas-city-chiefs") into a
// readable name.
func nameFromSlug(href string) string {
	href = strings.TrimSuffix(href, "/")
	if idx := strings.LastIndexByte(href, '/'); idx >= 0 {
		href = href[idx+1:]
	}
	return strings.TrimSpace(strings.ReplaceAll(href, "-", " "))
}
