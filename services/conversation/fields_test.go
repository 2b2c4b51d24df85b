package conversation

import (
	"testing"

	"qartelbot/models"
)

func TestSplitTaxID(t *testing.T) {
	tests := []struct {
		in       string
		inn, kpp string
	}{
		{"7701234567/770101001", "7701234567", "770101001"},
		{" 7701234567 / 770101001 ", "7701234567", "770101001"},
		{"771234567890", "771234567890", models.NotSpecified},
		{"", models.NotSpecified, models.NotSpecified},
		{"/770101001", models.NotSpecified, "770101001"},
	}
	for _, tt := range tests {
		inn, kpp := splitTaxID(tt.in)
		if inn != tt.inn || kpp != tt.kpp {
			t.Errorf("splitTaxID(%q) = %q, %q; want %q, %q", tt.in, inn, kpp, tt.inn, tt.kpp)
		}
	}
}

func TestPartyFieldsMissingSignatory(t *testing.T) {
	c := models.NewCounterparty()
	c.Name = "ИП Петров"
	f := partyFields(&c)
	if f["ФИОЛПР_Им"] != notSpecified || f["Должность ЛПР_Им"] != notSpecified {
		t.Fatalf("signatory: %q / %q", f["ФИОЛПР_Им"], f["Должность ЛПР_Им"])
	}
	if f["Банк"] != models.NotSpecified || f["БИК"] != models.NotSpecified {
		t.Fatalf("banking: %q / %q", f["Банк"], f["БИК"])
	}
}

func TestServicesTableLinksSheet(t *testing.T) {
	d := &models.AppendixDraft{SheetURL: "https://docs.google.com/spreadsheets/d/abc"}
	if got := servicesTable(d); got != d.SheetURL {
		t.Fatalf("got %q", got)
	}
	if got := servicesTable(&models.AppendixDraft{}); got != "" {
		t.Fatalf("empty table: %q", got)
	}
}
