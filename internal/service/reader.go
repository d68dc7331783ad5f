package service

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"battlereport-logger/internal/api"
	"battlereport-logger/internal/constants"
	"battlereport-logger/internal/repository"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// commentMarker flags a line in a bulk report file that carries no payload.
const commentMarker = "#IX#"

// BulkReader drives the two file-based ingestion paths: pre-fetched report
// payload files and report id lists. Both run strictly sequentially.
type BulkReader struct {
	servers   *repository.ServerRepository
	persister ChunkPersister
	ingest    *IngestService
	logger    zerolog.Logger
}

func NewBulkReader(
	servers *repository.ServerRepository,
	persister ChunkPersister,
	ingest *IngestService,
	logger zerolog.Logger,
) *BulkReader {
	return &BulkReader{
		servers:   servers,
		persister: persister,
		ingest:    ingest,
		logger:    logger,
	}
}

// ReadReportFile ingests a newline-delimited file of pre-fetched report
// payloads. Each line splits on whitespace into at least 4 fields with the
// JSON payload last; comment lines and malformed payloads are skipped and
// the run continues. Records are flushed in chunks of BulkChunkSize.
func (b *BulkReader) ReadReportFile(ctx context.Context, path string) error {
	runID, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate run id: %w", err)
	}
	logger := b.logger.With().Str("run_id", runID).Str("path", path).Logger()

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open report file: %w", err)
	}
	defer file.Close()

	resolver := NewServerResolver(b.servers, logger)

	var raws []*api.ReportResponse
	linesProcessed := 0
	reportsProcessed := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		linesProcessed++

		fields := strings.SplitN(line, " ", 4)
		if len(fields) > 0 && strings.EqualFold(fields[0], commentMarker) {
			continue
		}
		if len(fields) < 4 {
			logger.Warn().Int("line", linesProcessed).Msg("line has too few fields, skipping")
			continue
		}

		var raw api.ReportResponse
		if err := json.Unmarshal([]byte(fields[3]), &raw); err != nil {
			logger.Error().Err(err).Int("line", linesProcessed).Msg("failed to decode report payload, skipping")
			continue
		}
		raws = append(raws, &raw)
		reportsProcessed++

		if len(raws) >= constants.BulkChunkSize {
			if err := b.flush(ctx, resolver, raws, logger); err != nil {
				return err
			}
			logger.Info().Int("lines", linesProcessed).Int("reports", reportsProcessed).Msg("chunk upserted")
			raws = raws[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read report file: %w", err)
	}

	if err := b.flush(ctx, resolver, raws, logger); err != nil {
		return err
	}
	logger.Info().Int("lines", linesProcessed).Int("reports", reportsProcessed).Msg("report file ingested")

	return nil
}

// flush normalizes the accumulated payloads, resolves their servers through
// the run-scoped cache and persists the chunk. A payload that fails
// normalization is dropped alone.
func (b *BulkReader) flush(ctx context.Context, resolver *ServerResolver, raws []*api.ReportResponse, logger zerolog.Logger) error {
	chunk := &Chunk{}

	for _, raw := range raws {
		report, personas, playerReports, err := Normalize(raw)
		if err != nil {
			logger.Warn().Err(err).Str("report_id", raw.ID).Msg("skipping report")
			continue
		}

		serverID, err := resolver.Resolve(ctx, *raw.GameServer.GUID, stringOr(raw.GameServer.Name, ""))
		if err != nil {
			return err
		}
		report.ServerID = serverID

		chunk.BattleReports = append(chunk.BattleReports, *report)
		chunk.Personas = append(chunk.Personas, personas...)
		chunk.PlayerReports = append(chunk.PlayerReports, playerReports...)
	}

	return b.persister.Persist(ctx, chunk)
}

// ReadReportIDFile ingests a file of report ids, one per line, through the
// on-demand path. Each id gets exactly one delayed retry; a permanent
// failure is logged and the run moves on.
func (b *BulkReader) ReadReportIDFile(ctx context.Context, path string) error {
	runID, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate run id: %w", err)
	}
	logger := b.logger.With().Str("run_id", runID).Str("path", path).Logger()

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open report id file: %w", err)
	}
	defer file.Close()

	reportsProcessed := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		reportID := strings.TrimSpace(scanner.Text())
		if reportID == "" {
			continue
		}
		logger.Info().Str("report_id", reportID).Msg("processing report")

		var result *IngestResult
		backoff := retry.WithMaxRetries(1, retry.NewConstant(constants.RetryDelay))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			res, err := b.ingest.IngestReport(ctx, reportID)
			if err != nil {
				logger.Error().Err(err).Str("report_id", reportID).Msg("ingestion failed, retrying after delay")
				return retry.RetryableError(err)
			}
			result = res
			return nil
		})
		if err != nil {
			logger.Error().Err(err).Str("report_id", reportID).Msg("ingestion failed permanently")
			continue
		}

		reportsProcessed++
		if result.Success {
			logger.Info().Str("report_id", reportID).Msg("ingestion succeeded")
		} else {
			logger.Info().Str("report_id", reportID).Strs("errors", result.Errors).Msg("ingestion incomplete")
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read report id file: %w", err)
	}

	logger.Info().Int("reports", reportsProcessed).Msg("report id file processed")
	return nil
}
