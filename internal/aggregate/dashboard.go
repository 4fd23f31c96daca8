package aggregate

import (
	"context"
	"time"

	"intersect-backend/internal/models"
)

const defaultFetchTimeout = 10 * time.Second

type Store interface {
	GetGoalsByOrganization(ctx context.Context, orgID string) ([]models.Goal, error)
	GetProgressReportsByOrganization(ctx context.Context, orgID string) ([]models.ProgressReport, error)
	GetApplicationsByOrganization(ctx context.Context, orgID, status string) ([]models.Application, error)
}

type ActivitySource interface {
	UserCommits(ctx context.Context, repoURL, githubID string) ([]models.Commit, error)
	UserPulls(ctx context.Context, repoURL, githubID string) ([]models.PullRequest, error)
}

type ReportSource interface {
	LatestDevReport(ctx context.Context, org *models.Organization) (*models.DevReport, error)
}

// Section carries one collection's outcome. A failed fetch degrades to an
// error string on its section instead of failing the whole dashboard.
type Section[T any] struct {
	Data  T      `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func section[T any](data T, err error) Section[T] {
	if err != nil {
		var zero T
		return Section[T]{Data: zero, Error: err.Error()}
	}
	return Section[T]{Data: data}
}

type Dashboard struct {
	Goals        Section[[]models.GoalWithReport] `json:"goals"`
	Applications *Section[[]models.Application]   `json:"applications,omitempty"`
	Commits      Section[[]models.Commit]         `json:"commits"`
	Pulls        Section[[]models.PullRequest]    `json:"pulls"`
	DevReport    Section[*models.DevReport]       `json:"dev_report"`
}

// Aggregator fans out the dashboard's dependent fetches concurrently with
// settle-all semantics and merges goals with their progress reports.
type Aggregator struct {
	store    Store
	activity ActivitySource
	reports  ReportSource
	timeout  time.Duration
}

func New(store Store, activity ActivitySource, reports ReportSource) *Aggregator {
	return &Aggregator{
		store:    store,
		activity: activity,
		reports:  reports,
		timeout:  defaultFetchTimeout,
	}
}

func (a *Aggregator) Dashboard(ctx context.Context, org *models.Organization, githubID string, role models.Role) *Dashboard {
	var (
		goals        []models.Goal
		progress     []models.ProgressReport
		applications []models.Application
		commits      []models.Commit
		pulls        []models.PullRequest
		devReport    *models.DevReport
	)

	tasks := []func(context.Context) error{
		func(ctx context.Context) error {
			var err error
			goals, err = a.store.GetGoalsByOrganization(ctx, org.ID)
			return err
		},
		func(ctx context.Context) error {
			var err error
			progress, err = a.store.GetProgressReportsByOrganization(ctx, org.ID)
			return err
		},
		func(ctx context.Context) error {
			var err error
			commits, err = a.activity.UserCommits(ctx, org.GitHubURL, githubID)
			return err
		},
		func(ctx context.Context) error {
			var err error
			pulls, err = a.activity.UserPulls(ctx, org.GitHubURL, githubID)
			return err
		},
		func(ctx context.Context) error {
			var err error
			devReport, err = a.reports.LatestDevReport(ctx, org)
			return err
		},
	}

	includeApplications := role.IsAdmin()
	if includeApplications {
		tasks = append(tasks, func(ctx context.Context) error {
			var err error
			applications, err = a.store.GetApplicationsByOrganization(ctx, org.ID, models.ApplicationPending)
			return err
		})
	}

	errs := Settle(ctx, a.timeout, tasks...)

	d := &Dashboard{
		Commits:   section(commits, errs[2]),
		Pulls:     section(pulls, errs[3]),
		DevReport: section(devReport, errs[4]),
	}

	// Goals render without report sections when the report fetch fails; the
	// degradation is still reported on the section.
	switch {
	case errs[0] != nil:
		d.Goals = section[[]models.GoalWithReport](nil, errs[0])
	case errs[1] != nil:
		d.Goals = Section[[]models.GoalWithReport]{
			Data:  MergeGoalReports(goals, nil),
			Error: "progress reports unavailable: " + errs[1].Error(),
		}
	default:
		d.Goals = section(MergeGoalReports(goals, progress), nil)
	}

	if includeApplications {
		apps := section(applications, errs[5])
		d.Applications = &apps
	}

	return d
}
