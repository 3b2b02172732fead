package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/gdugdh24/roomly-backend/internal/config"
	"github.com/gdugdh24/roomly-backend/internal/domain"
)

const maxIcebreakers = 3

// textGenerator is the part of the Gemini model the client needs.
type textGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type genaiModel struct {
	model *genai.GenerativeModel
}

func (m genaiModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := m.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// Client suggests conversation openers for a mutual match. Gemini calls run
// behind a circuit breaker; any failure falls back to openers built from the
// two profiles.
type Client struct {
	client  *genai.Client
	gen     textGenerator
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewClient returns a fallback-only client when no API key is configured.
func NewClient(cfg config.GeminiConfig, logger *zap.Logger) (*Client, error) {
	c := &Client{logger: logger, breaker: newBreaker(logger)}
	if cfg.APIKey == "" {
		logger.Info("gemini api key not set, icebreakers use fallback only")
		return c, nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(0.7)

	c.client = client
	c.gen = genaiModel{model: model}
	return c, nil
}

func newClientWithGenerator(gen textGenerator, logger *zap.Logger) *Client {
	return &Client{gen: gen, breaker: newBreaker(logger), logger: logger}
}

func newBreaker(logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Icebreakers returns up to three openers a could send to b.
func (c *Client) Icebreakers(ctx context.Context, a, b *domain.UserProfile) ([]string, error) {
	lines, err := c.generate(ctx, a, b)
	if err == nil && len(lines) > 0 {
		return lines, nil
	}
	if err != nil && !errors.Is(err, domain.ErrIcebreakersUnavailable) {
		c.logger.Warn("gemini unavailable, using fallback icebreakers", zap.Error(err))
	}
	return Fallback(a, b), nil
}

func (c *Client) generate(ctx context.Context, a, b *domain.UserProfile) ([]string, error) {
	if c.gen == nil {
		return nil, domain.ErrIcebreakersUnavailable
	}

	prompt := fmt.Sprintf(`
		Generate 3 short icebreaker messages for two people who might share a flat.
		User 1: %s, interests: %v, area: %s
		User 2: %s, interests: %v, area: %s

		Task: Create 3 distinct opening lines that User 1 could send to User 2.
		Focus on shared interests and living habits.
		Output: JSON array of strings. Example: ["Hi...", "Hello..."]
	`, a.DisplayName, a.Interests, deref(a.Area), b.DisplayName, b.Interests, deref(b.Area))

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.gen.GenerateText(ctx, prompt)
	})
	if err != nil {
		return nil, err
	}
	return parseLines(out.(string))
}

func parseLines(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	// Clean up markdown code blocks if present
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var lines []string
	if err := json.Unmarshal([]byte(text), &lines); err != nil {
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "[") && !strings.HasSuffix(line, "]") {
				lines = append(lines, line)
			}
		}
		if len(lines) == 0 {
			return nil, fmt.Errorf("failed to parse icebreakers: %w", err)
		}
	}
	if len(lines) > maxIcebreakers {
		lines = lines[:maxIcebreakers]
	}
	return lines, nil
}

// Fallback builds openers from shared interests and areas. The result only
// depends on the two profiles.
func Fallback(a, b *domain.UserProfile) []string {
	shared := sharedInterests(a.Interests, b.Interests)

	lines := make([]string, 0, maxIcebreakers)
	for _, interest := range shared {
		if len(lines) == 2 {
			break
		}
		lines = append(lines, fmt.Sprintf("Hi %s! I see you're into %s too. How did you get started?", b.DisplayName, interest))
	}
	if area := deref(b.Area); area != "" {
		lines = append(lines, fmt.Sprintf("What do you like most about living around %s?", area))
	}
	defaults := []string{
		fmt.Sprintf("Hi %s! What does a perfect weekend at home look like for you?", b.DisplayName),
		"How do you usually split chores with flatmates?",
		"Are you more of an early bird or a night owl?",
	}
	for _, line := range defaults {
		if len(lines) == maxIcebreakers {
			break
		}
		lines = append(lines, line)
	}
	return lines
}

func sharedInterests(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, i := range b {
		set[strings.ToLower(strings.TrimSpace(i))] = struct{}{}
	}
	var shared []string
	seen := make(map[string]struct{})
	for _, i := range a {
		key := strings.ToLower(strings.TrimSpace(i))
		if _, ok := set[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		shared = append(shared, key)
	}
	sort.Strings(shared)
	return shared
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
