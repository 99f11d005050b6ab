package catalog

import (
	"strings"
	"testing"
)

const sampleMetafile = `<?xml version="1.0" encoding="UTF-8"?>
<digital_tpp cycle="2407" from_edate="0901Z  07/11/24" to_edate="0901Z  08/08/24">
  <state_code ID="CA" state_fullname="California">
    <city_name ID="San Francisco" volume="SW-2">
      <airport_name ID="San Francisco Intl" military="N" apt_ident="sfo" icao_ident="ksfo" alnum="375">
        <record>
          <chartseq>10100</chartseq>
          <chart_code>apd</chart_code>
          <chart_name>Airport Diagram</chart_name>
          <useraction></useraction>
          <pdf_name>00375ad.pdf</pdf_name>
        </record>
        <record>
          <chartseq>50750</chartseq>
          <chart_code>IAP</chart_code>
          <chart_name>ILS OR LOC RWY 28L</chart_name>
          <useraction></useraction>
          <pdf_name>00375IL28L.PDF</pdf_name>
        </record>
        <record>
          <chart_code>IAP</chart_code>
          <chart_name>VOR/DME RWY 19L</chart_name>
          <pdf_name>00375VDR19L.PDF</pdf_name>
        </record>
        <record>
          <chart_code>IAP</chart_code>
          <chart_name>RNAV (GPS) RWY 10L</chart_name>
          <useraction>D</useraction>
          <pdf_name>00375R10L.PDF</pdf_name>
        </record>
        <record>
          <chart_code>HOT</chart_code>
          <chart_name>HOT SPOT</chart_name>
          <pdf_name></pdf_name>
        </record>
      </airport_name>
      <airport_name ID="Placeholder" military="N" apt_ident="" icao_ident="">
        <record><chart_code>IAP</chart_code><chart_name>X</chart_name><pdf_name>X.PDF</pdf_name></record>
      </airport_name>
    </city_name>
  </state_code>
  <state_code ID="NV" state_fullname="Nevada">
    <city_name ID="Las Vegas" volume="SW-1">
      <airport_name ID="Harry Reid Intl" military="N" apt_ident="LAS" icao_ident="KLAS">
        <record><chart_code>MIN</chart_code><chart_name>Takeoff Minimums</chart_name><pdf_name>sw1to.pdf</pdf_name></record>
      </airport_name>
      <airport_name ID="Creech AFB" military="Y" apt_ident="INS" icao_ident="KINS"/>
    </city_name>
  </state_code>
</digital_tpp>`

func TestParseBuildsUppercasedDocuments(t *testing.T) {
	cat, err := Parse(strings.NewReader(sampleMetafile))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if cat.Cycle != "2407" {
		t.Fatalf("unexpected cycle %q", cat.Cycle)
	}
	if len(cat.Airports) != 3 {
		t.Fatalf("expected 3 airports (placeholder skipped), got %d", len(cat.Airports))
	}

	sfo := cat.Airports[0]
	if sfo.ID != "SFO" || sfo.ICAO != "KSFO" || sfo.City != "SAN FRANCISCO" || sfo.State != "CA" {
		t.Fatalf("unexpected airport: %+v", sfo)
	}
	if len(sfo.Documents) != 3 {
		t.Fatalf("expected 3 documents (deleted and empty skipped), got %d: %+v", len(sfo.Documents), sfo.Documents)
	}
	diagram := sfo.Documents[0]
	if diagram.Source != "00375AD.PDF" || diagram.Code != "APD" || diagram.BaseName != "APD-CA-AIRPORT DIAGRAM" {
		t.Fatalf("unexpected diagram document: %+v", diagram)
	}
	if got := sfo.Documents[2].BaseName; got != "IAP-CA-VOR_DME RWY 19L" {
		t.Fatalf("expected path separator replaced, got %q", got)
	}

	if got := cat.States(); len(got) != 2 || got[0] != "CA" || got[1] != "NV" {
		t.Fatalf("unexpected states %v", got)
	}
	nv := cat.AirportsIn("NV")
	if len(nv) != 2 || !nv[1].Military || len(nv[1].Documents) != 0 {
		t.Fatalf("unexpected NV airports: %+v", nv)
	}
	if cat.DocumentCount() != 4 {
		t.Fatalf("expected 4 documents, got %d", cat.DocumentCount())
	}
	if _, ok := cat.Airport("LAS"); !ok {
		t.Fatal("expected LAS lookup to succeed")
	}
}

func TestParseRejectsMalformedXML(t *testing.T) {
	if _, err := Parse(strings.NewReader("<digital_tpp><state_code>")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestOutputBaseName(t *testing.T) {
	if got := OutputBaseName("IAP", "CA", "ILS RWY 28L"); got != "IAP-CA-ILS RWY 28L" {
		t.Fatalf("unexpected base name %q", got)
	}
}
