package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"intersect-backend/internal/models"
)

type OpenRouterClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type openRouterRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterResponse struct {
	ID      string   `json:"id"`
	Choices []choice `json:"choices"`
}

type choice struct {
	Message message `json:"message"`
}

func NewOpenRouterClient() *OpenRouterClient {
	apiKey := os.Getenv("OPENROUTER_KEY")
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	model := os.Getenv("OPENROUTER_MODEL")
	if model == "" {
		model = "google/gemini-2.0-flash-001"
	}

	return &OpenRouterClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://openrouter.ai/api/v1",
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *OpenRouterClient) complete(ctx context.Context, system, user string) (string, error) {
	req := openRouterRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal error: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create request error: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("HTTP-Referer", "https://intersect.local")
	httpReq.Header.Set("X-Title", "Intersect")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openrouter responded %d: %s", resp.StatusCode, string(body))
	}

	var orResp openRouterResponse
	if err := json.NewDecoder(resp.Body).Decode(&orResp); err != nil {
		return "", err
	}
	if len(orResp.Choices) == 0 {
		return "", fmt.Errorf("openrouter returned no choices")
	}

	return orResp.Choices[0].Message.Content, nil
}

const devReportSystemPrompt = `You are a technical writer for a product team.
Given a day's commit messages, produce a development report that a non-technical
stakeholder can read.

OUTPUT FORMAT (strict JSON only, no markdown):
{
  "summary": "One paragraph summarizing the day's work.",
  "changes": ["each notable change as a short sentence"],
  "issues": ["problems visible from the commits, empty list if none"],
  "suggestions": ["follow-up work the commits imply, empty list if none"]
}`

type devReportPayload struct {
	Summary     string   `json:"summary"`
	Changes     []string `json:"changes"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// GenerateDevReport turns a day's commit messages into a stakeholder-readable
// report. Falls back to a mechanical summary when the AI service is
// unavailable.
func (c *OpenRouterClient) GenerateDevReport(ctx context.Context, commitMessages []string) (*models.DevReport, error) {
	var sb strings.Builder
	sb.WriteString("COMMIT MESSAGES\n")
	for _, msg := range commitMessages {
		sb.WriteString("- ")
		sb.WriteString(msg)
		sb.WriteString("\n")
	}
	sb.WriteString("\nProduce the JSON development report.")

	content, err := c.complete(ctx, devReportSystemPrompt, sb.String())
	if err != nil {
		log.Printf("WARN AI dev report error, using fallback: %v", err)
		return fallbackDevReport(commitMessages), nil
	}

	var payload devReportPayload
	if err := json.Unmarshal([]byte(extractJSON(content)), &payload); err != nil {
		log.Printf("WARN AI dev report JSON parse error, using fallback: %v", err)
		return fallbackDevReport(commitMessages), nil
	}

	return &models.DevReport{
		Summary:     payload.Summary,
		Changes:     payload.Changes,
		Issues:      payload.Issues,
		Suggestions: payload.Suggestions,
	}, nil
}

func fallbackDevReport(commitMessages []string) *models.DevReport {
	changes := make([]string, 0, len(commitMessages))
	for _, msg := range commitMessages {
		if line := strings.TrimSpace(strings.SplitN(msg, "\n", 2)[0]); line != "" {
			changes = append(changes, line)
		}
	}

	summary := fmt.Sprintf("%d commits landed today. AI summarization is unavailable; raw commit subjects are listed instead.", len(changes))
	if len(changes) == 0 {
		summary = "No commits landed today."
	}

	return &models.DevReport{
		Summary:     summary,
		Changes:     changes,
		Issues:      []string{},
		Suggestions: []string{},
	}
}

const progressReportSystemPrompt = `You are an engineering progress analyst.
Given a product goal and the team's recent commits and pull requests, assess
how far along the goal actually is versus where it should be.

OUTPUT FORMAT (strict JSON only, no markdown):
{
  "expected_progress": "short assessment of where the goal should stand given its due date",
  "confirmed_progress": "short assessment of where the commits and PRs show it actually stands",
  "issues": ["concrete blockers or gaps, empty list if none"],
  "suggestions": ["concrete next steps, empty list if none"],
  "todos": ["remaining work items, empty list if none"],
  "risks": ["delivery risks, empty list if none"]
}`

type progressReportPayload struct {
	ExpectedProgress  string   `json:"expected_progress"`
	ConfirmedProgress string   `json:"confirmed_progress"`
	Issues            []string `json:"issues"`
	Suggestions       []string `json:"suggestions"`
	Todos             []string `json:"todos"`
	Risks             []string `json:"risks"`
}

func (c *OpenRouterClient) GenerateProgressReport(ctx context.Context, goal models.Goal, commits []models.Commit, pulls []models.PullRequest) (*models.ProgressReport, error) {
	var sb strings.Builder
	sb.WriteString("GOAL\n")
	fmt.Fprintf(&sb, "Title: %s\n", goal.Title)
	fmt.Fprintf(&sb, "Description: %s\n", goal.Description)
	fmt.Fprintf(&sb, "Due date: %s\n", goal.DueDate)
	fmt.Fprintf(&sb, "Reported progress: %d%%\n", goal.Progress)

	sb.WriteString("\nCOMMITS\n")
	for _, commit := range commits {
		fmt.Fprintf(&sb, "- %s\n", firstLine(commit.Message))
	}

	sb.WriteString("\nPULL REQUESTS\n")
	for _, pull := range pulls {
		fmt.Fprintf(&sb, "- #%d %s (%s)\n", pull.Number, pull.Title, pull.State)
	}

	sb.WriteString("\nProduce the JSON progress report.")

	content, err := c.complete(ctx, progressReportSystemPrompt, sb.String())
	if err != nil {
		log.Printf("WARN AI progress report error, using fallback: %v", err)
		return fallbackProgressReport(goal), nil
	}

	var payload progressReportPayload
	if err := json.Unmarshal([]byte(extractJSON(content)), &payload); err != nil {
		log.Printf("WARN AI progress report JSON parse error, using fallback: %v", err)
		return fallbackProgressReport(goal), nil
	}

	return &models.ProgressReport{
		GoalID:            goal.ID,
		ExpectedProgress:  payload.ExpectedProgress,
		ConfirmedProgress: payload.ConfirmedProgress,
		Issues:            payload.Issues,
		Suggestions:       payload.Suggestions,
		Todos:             payload.Todos,
		Risks:             payload.Risks,
	}, nil
}

func fallbackProgressReport(goal models.Goal) *models.ProgressReport {
	return &models.ProgressReport{
		GoalID:            goal.ID,
		ExpectedProgress:  "AI service unavailable; no expected-progress assessment.",
		ConfirmedProgress: fmt.Sprintf("Team-reported progress is %d%%.", goal.Progress),
		Issues:            []string{},
		Suggestions:       []string{"Retry report generation once the AI service is reachable."},
	}
}

const documentationSystemPrompt = `You are a technical documentation expert.
Analyze the provided change and generate documentation for it.

OUTPUT FORMAT (strict JSON only, no markdown):
{
  "title": "one-line title for the change",
  "summary": "what the change does and why",
  "details": ["notable implementation details"],
  "impact": "who or what this change affects",
  "audience": "developers | product | mixed"
}`

func (c *OpenRouterClient) GenerateCommitDocumentation(ctx context.Context, commit *models.Commit) (*models.Documentation, error) {
	user := fmt.Sprintf("COMMIT %s\nAuthor: %s\n\n%s\n\nProduce the JSON documentation.", commit.SHA, commit.Author, commit.Message)
	return c.generateDocumentation(ctx, user, firstLine(commit.Message))
}

func (c *OpenRouterClient) GeneratePullDocumentation(ctx context.Context, pull *models.PullRequest) (*models.Documentation, error) {
	user := fmt.Sprintf("PULL REQUEST #%d: %s\nAuthor: %s\nState: %s\n\n%s\n\nProduce the JSON documentation.",
		pull.Number, pull.Title, pull.Author, pull.State, pull.Body)
	return c.generateDocumentation(ctx, user, pull.Title)
}

func (c *OpenRouterClient) generateDocumentation(ctx context.Context, user, fallbackTitle string) (*models.Documentation, error) {
	content, err := c.complete(ctx, documentationSystemPrompt, user)
	if err != nil {
		log.Printf("WARN AI documentation error, using fallback: %v", err)
		return fallbackDocumentation(fallbackTitle), nil
	}

	var doc models.Documentation
	if err := json.Unmarshal([]byte(extractJSON(content)), &doc); err != nil {
		log.Printf("WARN AI documentation JSON parse error, using fallback: %v", err)
		return fallbackDocumentation(fallbackTitle), nil
	}

	return &doc, nil
}

func fallbackDocumentation(title string) *models.Documentation {
	return &models.Documentation{
		Title:   title,
		Summary: "AI service unavailable. Manual documentation required.",
		Details: []string{},
		Impact:  "unknown",
	}
}

const codebaseSystemPrompt = `You answer questions about a codebase using its
recent commit and pull request activity as evidence. Be explicit when the
activity does not contain enough information to answer.

OUTPUT FORMAT (strict JSON only, no markdown):
{
  "answer": "direct answer to the query",
  "relevant_areas": ["files, components or commits that informed the answer"]
}`

func (c *OpenRouterClient) AnswerCodebaseQuery(ctx context.Context, query string, commits []models.Commit, pulls []models.PullRequest) (*models.CodebaseAnswer, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "QUERY: %s\n\nRECENT COMMITS\n", query)
	for _, commit := range commits {
		fmt.Fprintf(&sb, "- %s: %s\n", commit.SHA, firstLine(commit.Message))
	}
	sb.WriteString("\nRECENT PULL REQUESTS\n")
	for _, pull := range pulls {
		fmt.Fprintf(&sb, "- #%d %s\n", pull.Number, pull.Title)
	}
	sb.WriteString("\nProduce the JSON answer.")

	content, err := c.complete(ctx, codebaseSystemPrompt, sb.String())
	if err != nil {
		log.Printf("WARN AI codebase query error, using fallback: %v", err)
		return fallbackCodebaseAnswer(query), nil
	}

	var answer models.CodebaseAnswer
	if err := json.Unmarshal([]byte(extractJSON(content)), &answer); err != nil {
		log.Printf("WARN AI codebase answer JSON parse error, using fallback: %v", err)
		return fallbackCodebaseAnswer(query), nil
	}
	answer.Query = query

	return &answer, nil
}

func fallbackCodebaseAnswer(query string) *models.CodebaseAnswer {
	return &models.CodebaseAnswer{
		Query:  query,
		Answer: "AI service unavailable. Retry the query later.",
	}
}

func firstLine(s string) string {
	return strings.TrimSpace(strings.SplitN(s, "\n", 2)[0])
}

// extractJSON pulls the first balanced JSON object out of a model response
// that may wrap it in prose or fences.
func extractJSON(s string) string {
	start := -1
	end := -1
	depth := 0

	for i, c := range s {
		if c == '{' {
			if start == -1 {
				start = i
			}
			depth++
		} else if c == '}' {
			depth--
			if depth == 0 {
				end = i + 1
				break
			}
		}
	}

	if start >= 0 && end > start {
		return s[start:end]
	}
	return s
}
