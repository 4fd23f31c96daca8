package services

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"intersect-backend/internal/cache"
	"intersect-backend/internal/events"
	"intersect-backend/internal/github"
	"intersect-backend/internal/models"
	"intersect-backend/internal/storage"
)

// DevReportService produces the organization's daily development report.
// Lookup order: Redis day cache, then the persisted row, then regeneration
// from the day's commits through the AI client.
type DevReportService struct {
	store  *storage.Storage
	cache  cache.Client
	github *github.Client
	ai     *OpenRouterClient
	events *events.Publisher
}

func NewDevReportService(store *storage.Storage, cacheClient cache.Client, gh *github.Client, ai *OpenRouterClient, publisher *events.Publisher) *DevReportService {
	return &DevReportService{
		store:  store,
		cache:  cacheClient,
		github: gh,
		ai:     ai,
		events: publisher,
	}
}

func (s *DevReportService) LatestDevReport(ctx context.Context, org *models.Organization) (*models.DevReport, error) {
	if org.GitHubURL == "" {
		return nil, github.ErrNoRepository
	}

	now := time.Now().UTC()
	date := now.Format("2006-01-02")

	cached, err := s.cache.GetDevReport(org.ID, date)
	if err == nil {
		return cached, nil
	}
	if err != redis.Nil {
		// Cache trouble is not fatal; the database still has the row.
		log.Printf("WARN Dev report cache read error for %s: %v", org.ID, err)
	}

	if report, err := s.store.GetDevReport(ctx, org.ID, date); err != nil {
		return nil, err
	} else if report != nil {
		s.cacheReport(report, now)
		return report, nil
	}

	return s.generate(ctx, org, now)
}

func (s *DevReportService) generate(ctx context.Context, org *models.Organization, now time.Time) (*models.DevReport, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	commits, err := s.github.RepoCommits(ctx, org.GitHubURL, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	messages := make([]string, 0, len(commits))
	for _, commit := range commits {
		messages = append(messages, commit.Message)
	}

	report, err := s.ai.GenerateDevReport(ctx, messages)
	if err != nil {
		return nil, err
	}
	report.OrganizationID = org.ID
	report.ReportDate = now.Format("2006-01-02")

	if err := s.store.UpsertDevReport(ctx, report); err != nil {
		return nil, err
	}
	s.cacheReport(report, now)

	s.events.Publish(events.DevReportGenerated, org.ID, "", map[string]string{
		"report_date": report.ReportDate,
		"commits":     strconv.Itoa(len(commits)),
	})

	return report, nil
}

// cacheReport keeps the cached copy until the end of the report's day.
func (s *DevReportService) cacheReport(report *models.DevReport, now time.Time) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
	ttl := midnight.Sub(now)
	if ttl <= 0 {
		return
	}
	_ = s.cache.SetDevReport(report, ttl)
}
