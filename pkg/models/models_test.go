package models

import (
	"encoding/json"
	"testing"
)

func TestReportDetailsValue(t *testing.T) {
	details := ReportDetails{
		LineCountMatch: false,
		TimecodeIssues: []CuePair{
			{ReferenceText: "Hello", TranslatedText: "Bonjour"},
		},
		Overlap:        true,
		OverlapIndex:   3,
		ReferenceCues:  10,
		TranslatedCues: 10,
	}

	value, err := details.Value()
	if err != nil {
		t.Fatalf("Failed to get value: %v", err)
	}

	// Value should be JSON
	var result map[string]interface{}
	if err := json.Unmarshal(value.([]byte), &result); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if result["line_count_match"] != false {
		t.Errorf("Expected line_count_match=false, got %v", result["line_count_match"])
	}

	if result["overlap"] != true {
		t.Errorf("Expected overlap=true, got %v", result["overlap"])
	}
}

func TestReportDetailsScan(t *testing.T) {
	jsonData := []byte(`{"line_count_match":true,"overlap":false,"reference_cues":5,"translated_cues":5,"timecode_issues":[{"reference_text":"a","translated_text":"b"}]}`)

	var details ReportDetails
	if err := details.Scan(jsonData); err != nil {
		t.Fatalf("Failed to scan: %v", err)
	}

	if !details.LineCountMatch {
		t.Error("Expected line_count_match=true")
	}

	if len(details.TimecodeIssues) != 1 {
		t.Fatalf("Expected 1 timecode issue, got %d", len(details.TimecodeIssues))
	}

	if details.TimecodeIssues[0].ReferenceText != "a" {
		t.Errorf("Expected reference text a, got %s", details.TimecodeIssues[0].ReferenceText)
	}
}

func TestReportDetailsScanNil(t *testing.T) {
	var details ReportDetails
	if err := details.Scan(nil); err != nil {
		t.Fatalf("Failed to scan nil: %v", err)
	}

	if details.LineCountMatch {
		t.Error("Expected zero-value details after scanning nil")
	}
}

func TestWebhookEventsRoundTrip(t *testing.T) {
	events := WebhookEvents{
		RunCompleted:      true,
		DocumentValidated: true,
	}

	value, err := events.Value()
	if err != nil {
		t.Fatalf("Failed to get value: %v", err)
	}

	var decoded WebhookEvents
	if err := decoded.Scan(value.([]byte)); err != nil {
		t.Fatalf("Failed to scan: %v", err)
	}

	if !decoded.RunCompleted || !decoded.DocumentValidated {
		t.Error("Expected subscribed events to survive the round trip")
	}

	if decoded.RunFailed {
		t.Error("Expected unsubscribed events to stay false")
	}
}
