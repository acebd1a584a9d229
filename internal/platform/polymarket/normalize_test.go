package polymarket

import (
	"testing"
)

func TestNormalize_ParsesEncodedFields(t *testing.T) {
	raw := APIMarket{
		ID:            "m1",
		Question:      "Will Walmart beat Q2 earnings estimates?",
		Slug:          "walmart-q2-earnings",
		Category:      "stocks",
		Active:        true,
		OutcomePrices: `["0.62","0.38"]`,
		ClobTokenIDs:  `["111","222"]`,
		VolumeNum:     12345.5,
		Liquidity:     "678.9",
	}

	m := Normalize(raw, nil)

	if m.YesPrice() != 0.62 || m.NoPrice() != 0.38 {
		t.Errorf("prices = %v/%v, want 0.62/0.38", m.YesPrice(), m.NoPrice())
	}
	if len(m.TokenIDs) != 2 || m.TokenIDs[0] != "111" {
		t.Errorf("TokenIDs = %v, want [111 222]", m.TokenIDs)
	}
	if m.Volume != 12345.5 {
		t.Errorf("Volume = %v, want the pre-computed numeric field", m.Volume)
	}
	if m.Liquidity != 678.9 {
		t.Errorf("Liquidity = %v, want 678.9 parsed from string field", m.Liquidity)
	}
	if m.EventSlug != "walmart-q2-earnings" {
		t.Errorf("EventSlug = %q, want fallback to market slug", m.EventSlug)
	}
}

func TestNormalize_NumericArrayVariant(t *testing.T) {
	raw := APIMarket{ID: "m1", OutcomePrices: `[0.62,0.38]`}
	m := Normalize(raw, nil)
	if m.YesPrice() != 0.62 || m.NoPrice() != 0.38 {
		t.Errorf("prices = %v/%v, want 0.62/0.38 from numeric array", m.YesPrice(), m.NoPrice())
	}
}

func TestNormalize_MalformedFieldsUseDefaults(t *testing.T) {
	raw := APIMarket{
		ID:            "m1",
		OutcomePrices: `[not json`,
		ClobTokenIDs:  `{"oops"`,
		Volume:        "not a number",
	}

	m := Normalize(raw, nil)

	if m.YesPrice() != 0 || m.NoPrice() != 0 {
		t.Errorf("prices = %v/%v, want 0/0 default", m.YesPrice(), m.NoPrice())
	}
	if len(m.OutcomePrices) != 2 {
		t.Errorf("OutcomePrices = %v, want two-element [0,0] default", m.OutcomePrices)
	}
	if len(m.TokenIDs) != 0 {
		t.Errorf("TokenIDs = %v, want empty default", m.TokenIDs)
	}
	if m.Volume != 0 {
		t.Errorf("Volume = %v, want 0 after both coercion tiers fail", m.Volume)
	}
}

func TestNormalize_UnparseablePriceEntryFallsBack(t *testing.T) {
	raw := APIMarket{ID: "m1", OutcomePrices: `["0.62","abc"]`}
	m := Normalize(raw, nil)
	if m.YesPrice() != 0 || m.NoPrice() != 0 {
		t.Errorf("prices = %v/%v, want [0,0] when any entry is unparseable", m.YesPrice(), m.NoPrice())
	}
}

func TestNormalize_ParentEventPrecedence(t *testing.T) {
	raw := APIMarket{
		ID:   "m1",
		Slug: "own-slug",
		Events: []APIEventRef{
			{ID: "e2", Title: "Nested event", Slug: "nested-slug"},
		},
	}

	// Explicit parent wins over the nested events list.
	parent := &APIEventRef{ID: "e1", Title: "Walmart earnings", Slug: "walmart-earnings"}
	m := Normalize(raw, parent)
	if m.EventSlug != "walmart-earnings" || m.EventTitle != "Walmart earnings" {
		t.Errorf("parent metadata = %q/%q, want explicit parent", m.EventTitle, m.EventSlug)
	}

	// Without an explicit parent, the nested list is used.
	m = Normalize(raw, nil)
	if m.EventSlug != "nested-slug" {
		t.Errorf("EventSlug = %q, want nested event slug", m.EventSlug)
	}
}

func TestNormalizeEvent_AttachesParent(t *testing.T) {
	ev := APIEvent{
		ID:    "e1",
		Title: "Costco membership fee",
		Slug:  "costco-fee",
		Markets: []APIMarket{
			{ID: "m1", Question: "Will the fee rise in 2025?"},
			{ID: "m2", Question: "Will the fee rise in 2026?"},
		},
	}

	markets := NormalizeEvent(ev)
	if len(markets) != 2 {
		t.Fatalf("got %d markets, want 2", len(markets))
	}
	for _, m := range markets {
		if m.EventID != "e1" || m.EventTitle != "Costco membership fee" || m.EventSlug != "costco-fee" {
			t.Errorf("market %s missing parent metadata: %+v", m.ID, m)
		}
	}
}

func TestFlexBool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`"true"`, true},
		{`"false"`, false},
		{`"1"`, true},
	}
	for _, tt := range tests {
		var f flexBool
		if err := f.UnmarshalJSON([]byte(tt.in)); err != nil {
			t.Errorf("UnmarshalJSON(%s) error: %v", tt.in, err)
			continue
		}
		if bool(f) != tt.want {
			t.Errorf("flexBool(%s) = %v, want %v", tt.in, f, tt.want)
		}
	}
}
