package AI

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"FleetGuard/Models"
)

func TestAnalyzeDamageImage(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")

		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Image != "aW1n" || req.Description != "bent axle" {
			t.Errorf("request not forwarded: %+v", req)
		}
		if !strings.Contains(req.Prompt, "TRUCK Renault") {
			t.Errorf("prompt missing unit context: %s", req.Prompt)
		}

		json.NewEncoder(w).Encode(AnalysisResult{
			DamageSummary:     "Axle visibly bent",
			EstimatedPriority: Models.PriorityCritical,
			SuggestedActions:  []string{"Replace axle"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	result, err := c.AnalyzeDamageImage("aW1n", "bent axle", "TRUCK Renault")
	if err != nil {
		t.Fatalf("AnalyzeDamageImage: %v", err)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if result.DamageSummary != "Axle visibly bent" {
		t.Fatalf("unexpected summary %q", result.DamageSummary)
	}
	if result.EstimatedPriority != Models.PriorityCritical {
		t.Fatalf("unexpected priority %s", result.EstimatedPriority)
	}
}

func TestAnalyzeFallbacks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// junk priority and empty fields from a flaky model
		w.Write([]byte(`{"damageSummary":"","estimatedPriority":"URGENT","suggestedActions":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	result, err := c.AnalyzeDamageImage("aW1n", "scrape", "TRAILER")
	if err != nil {
		t.Fatalf("AnalyzeDamageImage: %v", err)
	}
	if result.DamageSummary != "Analysis complete." {
		t.Fatalf("expected summary fallback, got %q", result.DamageSummary)
	}
	if result.EstimatedPriority != Models.PriorityMedium {
		t.Fatalf("expected MEDIUM fallback, got %s", result.EstimatedPriority)
	}
	if len(result.SuggestedActions) != 1 || result.SuggestedActions[0] != "Inspect physically" {
		t.Fatalf("expected action fallback, got %v", result.SuggestedActions)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, "").AnalyzeDamageImage("aW1n", "d", "u"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
	if _, err := NewClient("", "").AnalyzeDamageImage("aW1n", "d", "u"); err == nil {
		t.Fatal("expected error when unconfigured")
	}
}

func TestSummarizeReports(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/summarize" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req summarizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if len(req.Reports) != 2 {
			t.Errorf("expected 2 reports, got %d", len(req.Reports))
		}
		json.NewEncoder(w).Encode(summarizeResponse{Digest: "Two trucks need brake work this week."})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	digest, err := c.SummarizeReports([]string{"brakes worn", "brake line leak"})
	if err != nil {
		t.Fatalf("SummarizeReports: %v", err)
	}
	if digest != "Two trucks need brake work this week." {
		t.Fatalf("unexpected digest %q", digest)
	}
}

func TestSummarizeEmptySkipsNetwork(t *testing.T) {
	// no server at all; an empty batch must not hit the wire
	c := NewClient("http://127.0.0.1:1", "")
	digest, err := c.SummarizeReports(nil)
	if err != nil {
		t.Fatalf("SummarizeReports: %v", err)
	}
	if digest != "No reports to summarize." {
		t.Fatalf("unexpected digest %q", digest)
	}
}

func TestSummarizeEmptyDigestFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"digest":""}`))
	}))
	defer srv.Close()

	digest, err := NewClient(srv.URL, "").SummarizeReports([]string{"dent"})
	if err != nil {
		t.Fatalf("SummarizeReports: %v", err)
	}
	if digest != "Could not generate summary." {
		t.Fatalf("unexpected digest %q", digest)
	}
}
