// Package export converts chart data and overlays to and from XML.
package export

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/Dan9191/findash/internal/models"
	"github.com/beevik/etree"
	"github.com/pkg/errors"
)

// ChartXML renders a chart series as an XML document
func ChartXML(ticker, metric string, data models.ChartData) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("chart")
	root.CreateAttr("ticker", ticker)
	root.CreateAttr("metric", metric)
	root.CreateAttr("kind", string(data.Kind))

	if data.Kind == models.KindAnnual {
		writePoints(root.CreateElement("historical"), data.Historical)
		writePoints(root.CreateElement("future"), data.Future)
	} else {
		writePoints(root.CreateElement("series"), data.Series)
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, errors.Wrap(err, "failed to write chart XML")
	}
	return out, nil
}

func writePoints(parent *etree.Element, points []models.ChartPoint) {
	for _, p := range points {
		el := parent.CreateElement("point")
		el.CreateAttr("label", p.Label)
		el.CreateAttr("value", formatValue(p.Value))
	}
}

// OverlayXML renders overlay tables. Keys are written in sorted order so the
// output is stable.
func OverlayXML(tables models.FinancialTables) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("overlay")
	writeTables(root, tables.Tables)
	if len(tables.Averages) > 0 {
		writeTables(root.CreateElement(models.AveragesNamespace), tables.Averages)
	}
	if len(tables.CAGR) > 0 {
		writeTables(root.CreateElement(models.CAGRNamespace), tables.CAGR)
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, errors.Wrap(err, "failed to write overlay XML")
	}
	return out, nil
}

func writeTables(parent *etree.Element, tables map[string]models.Table) {
	for _, id := range sortedKeys(tables) {
		tableEl := parent.CreateElement("table")
		tableEl.CreateAttr("id", id)
		table := tables[id]
		for _, key := range sortedKeys(table) {
			periodEl := tableEl.CreateElement("period")
			periodEl.CreateAttr("key", key)
			rec := table[key]
			for _, metric := range sortedKeys(rec) {
				v := rec[metric]
				if math.IsNaN(v) {
					continue
				}
				field := periodEl.CreateElement("field")
				field.CreateAttr("metric", metric)
				field.SetText(formatValue(v))
			}
		}
	}
}

// ParseOverlayXML reads an overlay written by OverlayXML. Fields whose text
// is not a number are skipped; only an unreadable document is an error.
func ParseOverlayXML(raw []byte) (models.FinancialTables, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return models.FinancialTables{}, errors.Wrap(err, "failed to parse overlay XML")
	}
	root := doc.SelectElement("overlay")
	if root == nil {
		return models.FinancialTables{}, errors.New("overlay element not found in XML")
	}

	out := models.FinancialTables{Tables: readTables(root)}
	if ns := root.SelectElement(models.AveragesNamespace); ns != nil {
		out.Averages = readTables(ns)
	}
	if ns := root.SelectElement(models.CAGRNamespace); ns != nil {
		out.CAGR = readTables(ns)
	}
	return out, nil
}

func readTables(parent *etree.Element) map[string]models.Table {
	tables := make(map[string]models.Table)
	for _, tableEl := range parent.FindElements("./table") {
		id := tableEl.SelectAttrValue("id", "")
		if id == "" {
			continue
		}
		table, ok := tables[id]
		if !ok {
			table = make(models.Table)
			tables[id] = table
		}
		for _, periodEl := range tableEl.FindElements("./period") {
			key := models.NormalizePeriodKey(periodEl.SelectAttrValue("key", ""))
			if key == "" {
				continue
			}
			rec, ok := table[key]
			if !ok {
				rec = make(models.Record)
				table[key] = rec
			}
			for _, field := range periodEl.FindElements("./field") {
				metric := field.SelectAttrValue("metric", "")
				v, err := strconv.ParseFloat(strings.TrimSpace(field.Text()), 64)
				if metric == "" || err != nil {
					continue
				}
				rec[metric] = v
			}
		}
	}
	return tables
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
