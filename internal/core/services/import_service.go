package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/statement_importer/internal/apperrors"
	"github.com/SscSPs/statement_importer/internal/archive"
	"github.com/SscSPs/statement_importer/internal/core/domain"
	portsrepo "github.com/SscSPs/statement_importer/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/statement_importer/internal/core/ports/services"
	"github.com/SscSPs/statement_importer/internal/dto"
	"github.com/SscSPs/statement_importer/internal/metrics"
	"github.com/SscSPs/statement_importer/internal/statement/parsers"
	"github.com/google/uuid"
)

// ParserRegistry selects the parser for a declared bank type and file format.
type ParserRegistry interface {
	Lookup(declaredType string, format parsers.Format) (parsers.StatementParser, error)
}

// EventEnqueuer receives product analytics events.
type EventEnqueuer interface {
	Enqueue(distinctID string, event string, properties map[string]any)
}

type importService struct {
	BaseService
	registry        ParserRegistry
	accountRepo     portsrepo.AccountReader
	transactionRepo portsrepo.TransactionRepositoryFacade
	dedup           portssvc.DedupMatcherSvc
	categorizer     portssvc.CategorizationSvc
	batches         portssvc.ImportBatchWriterSvc
	builder         *transactionBuilder
	archive         archive.Store
	metrics         *metrics.Metrics
	events          EventEnqueuer
	now             func() time.Time
}

// ImportOption configures the import service
type ImportOption func(*importService)

// WithImportFxResolver converts directly committed transactions into reportingCurrency.
func WithImportFxResolver(fx portssvc.FxRateReaderSvc, reportingCurrency string) ImportOption {
	return func(s *importService) {
		s.builder.fx = fx
		s.builder.reportingCurrency = reportingCurrency
	}
}

// WithArchive keeps a copy of every uploaded file.
func WithArchive(store archive.Store) ImportOption {
	return func(s *importService) {
		s.archive = store
	}
}

// WithImportMetrics records import outcomes.
func WithImportMetrics(m *metrics.Metrics) ImportOption {
	return func(s *importService) {
		s.metrics = m
	}
}

// WithImportEvents publishes an event for every finished import.
func WithImportEvents(events EventEnqueuer) ImportOption {
	return func(s *importService) {
		s.events = events
	}
}

// WithImportClock sets the clock used for audit timestamps.
func WithImportClock(now func() time.Time) ImportOption {
	return func(s *importService) {
		s.now = now
		s.builder.now = now
	}
}

// NewImportService wires the import pipeline.
func NewImportService(
	registry ParserRegistry,
	accountRepo portsrepo.AccountReader,
	transactionRepo portsrepo.TransactionRepositoryFacade,
	dedup portssvc.DedupMatcherSvc,
	categorizer portssvc.CategorizationSvc,
	batches portssvc.ImportBatchWriterSvc,
	options ...ImportOption,
) portssvc.ImportSvc {
	svc := &importService{
		registry:        registry,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		dedup:           dedup,
		categorizer:     categorizer,
		batches:         batches,
		builder:         &transactionBuilder{now: time.Now},
		now:             time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ImportSvc = (*importService)(nil)

func (s *importService) Import(ctx context.Context, req dto.ImportRequest) (*domain.ImportResult, error) {
	if err := validateImportRequest(req); err != nil {
		return nil, err
	}
	logger := s.GetLogger(ctx).With(
		slog.String("account_id", req.AccountID),
		slog.String("declared_type", req.DeclaredType),
		slog.String("file_name", req.FileName))

	account, err := s.accountRepo.FindAccountByID(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", req.AccountID, err)
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, account.AccountID)
	}

	format, err := parsers.FormatFromFileName(req.FileName)
	if err != nil {
		return nil, err
	}
	parser, err := s.registry.Lookup(req.DeclaredType, format)
	if err != nil {
		return nil, err
	}
	logger = logger.With(slog.String("parser", parser.Name()))

	doc := parsers.Document{Path: req.Path, FileName: req.FileName, Content: req.Content}
	sourceURI := s.archiveUpload(ctx, logger, account.AccountID, doc)

	drafts, err := parser.Parse(ctx, doc)
	if err != nil {
		s.metrics.RecordImport(parser.Name(), "failed")
		logger.Error("Statement parsing failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s (%s): %w", req.FileName, parser.Name(), err)
	}

	from, to := draftSpan(drafts)
	history, err := s.transactionRepo.ListTransactionsForAccount(ctx, account.AccountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction history: %w", err)
	}
	match := s.dedup.Match(drafts, history)
	s.metrics.RecordDrafts(match.New, match.Duplicates)

	categorized, err := s.categorizer.CategorizeDrafts(ctx, *account, match.Unmatched)
	if err != nil {
		return nil, err
	}

	result := &domain.ImportResult{
		Parser:     parser.Name(),
		AccountID:  account.AccountID,
		Total:      match.Total,
		Duplicates: match.Duplicates,
		New:        match.New,
	}

	if req.Review {
		err = s.stage(ctx, req, parser.Name(), sourceURI, mergeCategorized(match.All, categorized), result)
	} else {
		err = s.commit(ctx, req, *account, parser.Name(), sourceURI, categorized, result)
	}
	if err != nil {
		s.metrics.RecordImport(parser.Name(), "failed")
		return nil, err
	}

	s.metrics.RecordImport(parser.Name(), string(result.Mode))
	s.publish(req.UserID, result)
	logger.Info("Statement imported",
		slog.String("mode", string(result.Mode)),
		slog.Int("total", result.Total),
		slog.Int("duplicates", result.Duplicates),
		slog.Int("new", result.New),
		slog.Int("committed", result.Committed))
	return result, nil
}

// stage stores every draft, duplicates included and flagged, as a pending batch.
func (s *importService) stage(ctx context.Context, req dto.ImportRequest, parserName string, sourceURI *string, drafts []domain.TransactionDraft, result *domain.ImportResult) error {
	batch, err := s.batches.StageBatch(ctx, domain.ImportBatch{
		AccountID:            req.AccountID,
		ProposedTransactions: drafts,
		Parser:               parserName,
		FileName:             req.FileName,
		SourceFileURI:        sourceURI,
		AuditFields:          domain.AuditFields{CreatedBy: req.UserID},
	})
	if err != nil {
		return err
	}
	result.Mode = domain.ImportReviewed
	result.BatchID = &batch.BatchID
	result.Drafts = batch.ProposedTransactions
	return nil
}

// commit persists the non-duplicate drafts together with the audit record.
func (s *importService) commit(ctx context.Context, req dto.ImportRequest, account domain.Account, parserName string, sourceURI *string, drafts []domain.TransactionDraft, result *domain.ImportResult) error {
	importID := uuid.NewString()
	txns, unconverted, err := s.builder.build(ctx, account, drafts, commitRefs{importID: importID, userID: req.UserID})
	if err != nil {
		return err
	}

	record := domain.TransactionImport{
		ImportID:       importID,
		AccountID:      account.AccountID,
		Parser:         parserName,
		FileName:       req.FileName,
		SourceFileURI:  sourceURI,
		TotalCount:     result.Total,
		DuplicateCount: result.Duplicates,
		ImportedCount:  len(txns),
		ImportedAt:     s.now(),
		ImportedBy:     req.UserID,
	}
	if err := s.transactionRepo.SaveImportedTransactions(ctx, record, txns); err != nil {
		s.LogError(ctx, err, "Failed to commit imported transactions", slog.String("import_id", importID))
		return fmt.Errorf("failed to commit import in service: %w", err)
	}

	result.Mode = domain.ImportDirect
	result.ImportID = &importID
	result.Committed = len(txns)
	result.Unconverted = unconverted
	result.Drafts = drafts
	result.Transactions = txns
	return nil
}

// archiveUpload stores the raw file. The copy is informational, so a failure only loses the URI.
func (s *importService) archiveUpload(ctx context.Context, logger *slog.Logger, accountID string, doc parsers.Document) *string {
	if s.archive == nil {
		return nil
	}
	data, err := doc.Bytes()
	if err != nil {
		logger.Warn("Could not read upload for archiving", slog.String("error", err.Error()))
		return nil
	}
	uri, err := s.archive.Save(ctx, archive.ObjectKey(accountID, doc.FileName, s.now()), bytes.NewReader(data))
	if err != nil {
		logger.Warn("Statement archiving failed", slog.String("error", err.Error()))
		return nil
	}
	return &uri
}

func (s *importService) publish(userID string, result *domain.ImportResult) {
	if s.events == nil || userID == "" {
		return
	}
	s.events.Enqueue(userID, "statement_imported", map[string]any{
		"account_id": result.AccountID,
		"parser":     result.Parser,
		"mode":       string(result.Mode),
		"total":      result.Total,
		"duplicates": result.Duplicates,
		"committed":  result.Committed,
	})
}

// mergeCategorized puts the categorized new drafts back between the flagged duplicates.
func mergeCategorized(all, categorized []domain.TransactionDraft) []domain.TransactionDraft {
	out := make([]domain.TransactionDraft, 0, len(all))
	next := 0
	for _, d := range all {
		if !d.Duplicate && next < len(categorized) {
			d = categorized[next]
			next++
		}
		out = append(out, d)
	}
	return out
}

func validateImportRequest(req dto.ImportRequest) error {
	var missing []string
	if strings.TrimSpace(req.AccountID) == "" {
		missing = append(missing, "account id")
	}
	if strings.TrimSpace(req.DeclaredType) == "" {
		missing = append(missing, "declared type")
	}
	if strings.TrimSpace(req.FileName) == "" {
		missing = append(missing, "file name")
	}
	if req.Path == "" && req.Content == nil {
		missing = append(missing, "file content")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", apperrors.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}
