package service

import (
	"strings"
	"testing"
	"time"

	"edgar-ai/internal/storage"
)

func TestParseExtractionJSON(t *testing.T) {
	type payload struct {
		Value string `json:"value"`
	}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "plain json",
			input: `{"value": "ok"}`,
			want:  "ok",
		},
		{
			name:  "fenced json",
			input: "```json\n{\"value\": \"ok\"}\n```",
			want:  "ok",
		},
		{
			name:  "fence without language tag",
			input: "```\n{\"value\": \"ok\"}\n```",
			want:  "ok",
		},
		{
			name:  "fence missing closing marker",
			input: "```json\n{\"value\": \"ok\"}",
			want:  "ok",
		},
		{
			name:  "json buried in prose",
			input: "Here is the extraction you asked for:\n{\"value\": \"ok\"}\nLet me know if you need more.",
			want:  "ok",
		},
		{
			name:  "surrounding whitespace",
			input: "\n\n  {\"value\": \"ok\"}  \n",
			want:  "ok",
		},
		{
			name:    "no json at all",
			input:   "I could not find any financial data.",
			wantErr: true,
		},
		{
			name:    "malformed json",
			input:   `{"value": "ok"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got payload
			err := parseExtractionJSON(tt.input, &got)
			if tt.wantErr {
				if err == nil {
					t.Fatal("parseExtractionJSON() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseExtractionJSON() unexpected error: %v", err)
			}
			if got.Value != tt.want {
				t.Errorf("parseExtractionJSON() value = %q, want %q", got.Value, tt.want)
			}
		})
	}
}

func TestBuildExtractionContext(t *testing.T) {
	rows := []*storage.ChunkRecord{
		{Section: "item_1a", Text: "Risk text."},
		{Section: "item_7", Text: "MD&A text."},
		{Section: "item_8", Text: "Statements text."},
	}

	got := buildExtractionContext(rows, []string{"item_7", "item_8"}, 12000)

	if !strings.Contains(got, "[ITEM_7]\nMD&A text.") {
		t.Errorf("context missing item_7 block:\n%s", got)
	}
	if !strings.Contains(got, "[ITEM_8]\nStatements text.") {
		t.Errorf("context missing item_8 block:\n%s", got)
	}
	if strings.Contains(got, "ITEM_1A") {
		t.Errorf("context leaked a filtered section:\n%s", got)
	}
}

func TestBuildExtractionContextBudget(t *testing.T) {
	rows := []*storage.ChunkRecord{
		{Section: "item_7", Text: strings.Repeat("a", 50)},
		{Section: "item_7", Text: strings.Repeat("b", 50)},
		{Section: "item_7", Text: strings.Repeat("c", 50)},
	}

	// Each block is ~60 runes; a 130-rune budget fits exactly two.
	got := buildExtractionContext(rows, []string{"item_7"}, 130)

	if !strings.Contains(got, "a") || !strings.Contains(got, "b") {
		t.Errorf("context dropped blocks inside the budget:\n%s", got)
	}
	if strings.Contains(got, "c") {
		t.Errorf("context exceeded the budget:\n%s", got)
	}
}

func TestBuildExtractionContextEmpty(t *testing.T) {
	rows := []*storage.ChunkRecord{
		{Section: "item_7", Text: "MD&A text."},
	}

	if got := buildExtractionContext(rows, []string{"item_1a"}, 12000); got != "" {
		t.Errorf("buildExtractionContext() = %q, want empty when no section matches", got)
	}
}

func TestInferFiscalYear(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2025-01-30", 2024},
		{"2025-03-31", 2024},
		{"2025-04-01", 2025},
		{"2024-11-01", 2024},
	}

	for _, tt := range tests {
		date, err := time.Parse("2006-01-02", tt.date)
		if err != nil {
			t.Fatalf("bad test date %q: %v", tt.date, err)
		}
		if got := inferFiscalYear(date); got != tt.want {
			t.Errorf("inferFiscalYear(%s) = %d, want %d", tt.date, got, tt.want)
		}
	}
}
