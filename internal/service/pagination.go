package service

import (
	"context"
	"strconv"
	"time"

	"battlereport-logger/internal/api"
	"battlereport-logger/internal/constants"

	"github.com/rs/zerolog"
)

// ReportFeed accumulates a persona's battle reports from the remote
// "load more" endpoint, paging with an opaque timestamp cursor.
type ReportFeed struct {
	client ReportFetcher
	logger zerolog.Logger

	// emptyPageDelay is the wait between empty attempts; tests shrink it.
	emptyPageDelay time.Duration
}

func NewReportFeed(client ReportFetcher, logger zerolog.Logger) *ReportFeed {
	return &ReportFeed{
		client:         client,
		logger:         logger,
		emptyPageDelay: constants.RetryDelay,
	}
}

// FetchReportsForPersona pages the feed starting at cursor ("" means now),
// advancing the cursor to the created_at of the last report of every
// non-empty page. The loop ends after MaxPageAttempts total attempts, empty
// and successful pages counted together, or immediately on a fetch error;
// retrying a hard error is the caller's responsibility.
func (f *ReportFeed) FetchReportsForPersona(ctx context.Context, personaID, cursor string) ([]api.GameReport, error) {
	var reports []api.GameReport

	timestamp := cursor
	if timestamp == "" {
		timestamp = strconv.FormatInt(time.Now().Unix(), 10)
	}

	for attempt := 0; attempt < constants.MaxPageAttempts; attempt++ {
		page, err := f.client.GetMoreReports(ctx, personaID, timestamp)
		if err != nil {
			f.logger.Error().Err(err).
				Str("persona_id", personaID).
				Str("timestamp", timestamp).
				Msg("failed to fetch more reports")
			break
		}

		if page.Type != "success" {
			f.logger.Info().
				Str("status", page.Type).
				Str("persona_id", personaID).
				Msg("more fetch failed")
			continue
		}

		if len(page.Data.GameReports) == 0 {
			f.logger.Info().
				Str("persona_id", personaID).
				Str("timestamp", timestamp).
				Msg("game reports empty")
			if err := f.wait(ctx); err != nil {
				return reports, err
			}
			continue
		}

		reports = append(reports, page.Data.GameReports...)
		last := page.Data.GameReports[len(page.Data.GameReports)-1]
		timestamp = strconv.FormatInt(last.CreatedAt, 10)

		f.logger.Info().
			Int("count", len(page.Data.GameReports)).
			Str("persona_id", personaID).
			Str("next_timestamp", timestamp).
			Msg("game reports fetched")
	}

	return reports, nil
}

func (f *ReportFeed) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(f.emptyPageDelay):
		return nil
	}
}
