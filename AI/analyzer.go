package AI

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"FleetGuard/Models"
)

// Client talks to the damage-analysis service. The service is best effort
// everywhere it is used: a failed or unconfigured client never blocks
// report creation.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.BaseURL != ""
}

// AnalysisResult is the service's verdict on one damage photo.
type AnalysisResult struct {
	DamageSummary     string                `json:"damageSummary"`
	EstimatedPriority Models.RepairPriority `json:"estimatedPriority"`
	SuggestedActions  []string              `json:"suggestedActions"`
}

type analyzeRequest struct {
	Image       string `json:"image"`
	Description string `json:"description"`
	UnitContext string `json:"unitContext"`
	Prompt      string `json:"prompt"`
}

// AnalyzeDamageImage sends one base64 photo plus the reporter's description
// for assessment. Junk priority values from the service fall back to
// MEDIUM rather than failing the call.
func (c *Client) AnalyzeDamageImage(imageBase64, description, unitContext string) (*AnalysisResult, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("AI service not configured")
	}
	prompt := fmt.Sprintf(
		"You are an expert heavy-duty vehicle mechanic AI. Analyze the provided image of a %s and the user's description: %q. "+
			"1. Identify visible damage. 2. Assess the severity and assign a priority (LOW, MEDIUM, HIGH, CRITICAL). "+
			"3. Suggest specific repair actions or parts needed. "+
			"If the image is unclear or not relevant, rely on the description but note the ambiguity.",
		unitContext, description)

	var result AnalysisResult
	err := c.post("/analyze", analyzeRequest{
		Image:       imageBase64,
		Description: description,
		UnitContext: unitContext,
		Prompt:      prompt,
	}, &result)
	if err != nil {
		return nil, err
	}

	if result.DamageSummary == "" {
		result.DamageSummary = "Analysis complete."
	}
	if !Models.ValidPriority(result.EstimatedPriority) {
		result.EstimatedPriority = Models.PriorityMedium
	}
	if len(result.SuggestedActions) == 0 {
		result.SuggestedActions = []string{"Inspect physically"}
	}
	return &result, nil
}

type summarizeRequest struct {
	Reports []string `json:"reports"`
	Prompt  string   `json:"prompt"`
}

type summarizeResponse struct {
	Digest string `json:"digest"`
}

// SummarizeReports condenses a batch of report summaries into one
// maintenance-plan digest.
func (c *Client) SummarizeReports(summaries []string) (string, error) {
	if len(summaries) == 0 {
		return "No reports to summarize.", nil
	}
	if !c.Configured() {
		return "", fmt.Errorf("AI service not configured")
	}

	var result summarizeResponse
	err := c.post("/summarize", summarizeRequest{
		Reports: summaries,
		Prompt:  "Summarize the following damage reports into a concise maintenance plan.",
	}, &result)
	if err != nil {
		return "", err
	}
	if result.Digest == "" {
		return "Could not generate summary.", nil
	}
	return result.Digest, nil
}

func (c *Client) post(path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("AI service returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
