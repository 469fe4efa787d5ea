// Package sheet implements the application service over a business's
// spreadsheet database: customer, reservation, menu, place and FAQ reads,
// plus FAQ writes when write credentials are configured.
package sheet

import (
	"context"
	"errors"
	"strings"

	"github.com/dasbor/backend/internal/domain/broadcast"
	"github.com/dasbor/backend/internal/domain/business"
	"github.com/dasbor/backend/internal/domain/shared"
	"github.com/dasbor/backend/internal/domain/sheet"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service exposes the spreadsheet read and write operations
type Service struct {
	businessRepo business.BusinessRepository
	fetcher      sheet.Fetcher
	writer       sheet.Writer
	logger       *zap.Logger
}

// NewService creates a sheet service
func NewService(
	businessRepo business.BusinessRepository,
	fetcher sheet.Fetcher,
	writer sheet.Writer,
	logger *zap.Logger,
) *Service {
	return &Service{
		businessRepo: businessRepo,
		fetcher:      fetcher,
		writer:       writer,
		logger:       logger,
	}
}

// grid loads a business, resolves the tab for the given kind and returns the
// tokenized CSV grid. Every read and write operation funnels through here so
// the not-configured and archived checks live in one place.
func (s *Service) grid(ctx context.Context, businessID uuid.UUID, kind sheet.Kind) (*business.Business, [][]string, error) {
	biz, err := s.businessRepo.FindByID(ctx, businessID)
	if err != nil {
		return nil, nil, err
	}
	if !biz.IsActive() {
		return nil, nil, shared.NewDomainError("BUSINESS_ARCHIVED", "Business is archived")
	}

	ref, err := biz.SheetReference(kind)
	if err != nil {
		return nil, nil, err
	}

	csv, err := s.fetcher.FetchCSV(ctx, ref)
	if err != nil {
		s.logger.Warn("sheet fetch failed",
			zap.String("business_id", businessID.String()),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return nil, nil, err
	}

	return biz, sheet.Tokenize(csv), nil
}

// ListCustomers returns the rows of the customer tab. Header echoes inside
// the data range are dropped.
func (s *Service) ListCustomers(ctx context.Context, businessID uuid.UUID) (*CustomerListResult, error) {
	_, grid, err := s.grid(ctx, businessID, sheet.KindMenu)
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return &CustomerListResult{Rows: []sheet.Row{}}, nil
	}

	roles, err := sheet.ResolveRequired(grid[0], sheet.KindMenu, sheet.RoleName)
	if err != nil {
		return nil, asDomain(err)
	}

	return &CustomerListResult{Rows: sheet.Listing(grid, roles, true)}, nil
}

// ListReservations returns the rows of the reservation tab with the
// canonicalized date attached to each row.
func (s *Service) ListReservations(ctx context.Context, businessID uuid.UUID) (*ReservationListResult, error) {
	_, grid, err := s.grid(ctx, businessID, sheet.KindReservation)
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return &ReservationListResult{Rows: []sheet.Row{}}, nil
	}

	roles, err := sheet.ResolveRequired(grid[0], sheet.KindReservation, sheet.RoleName)
	if err != nil {
		return nil, asDomain(err)
	}

	return &ReservationListResult{Rows: sheet.Listing(grid, roles, true)}, nil
}

// MenuSummary aggregates the menu cells of one customer's rows into
// cumulative per-item quantities, sorted by name.
func (s *Service) MenuSummary(ctx context.Context, businessID uuid.UUID, externalID string) (*MenuSummaryResult, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External ID cannot be empty")
	}

	_, grid, err := s.grid(ctx, businessID, sheet.KindMenu)
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return &MenuSummaryResult{ExternalID: externalID, Items: []sheet.MenuCount{}}, nil
	}

	roles, err := sheet.ResolveRequired(grid[0], sheet.KindMenu, sheet.RoleExternalID, sheet.RoleMenu)
	if err != nil {
		return nil, asDomain(err)
	}

	rows := sheet.Listing(grid, roles, true)
	matched := sheet.FilterByExternalID(rows, grid[0], roles, externalID)
	menuHeader := sheet.HeaderFor(grid[0], roles, sheet.RoleMenu)
	counts := sheet.AggregateMenuCounts(matched, menuHeader)

	return &MenuSummaryResult{
		ExternalID: externalID,
		Items:      sheet.SortedMenuCounts(counts),
	}, nil
}

// ListMenu returns the menu tab as name/price items. Rows without a menu
// name are skipped; unparseable prices degrade to zero.
func (s *Service) ListMenu(ctx context.Context, businessID uuid.UUID) (*MenuListResult, error) {
	_, grid, err := s.grid(ctx, businessID, sheet.KindMenu)
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return &MenuListResult{Items: []MenuItem{}}, nil
	}

	roles, err := sheet.ResolveRequired(grid[0], sheet.KindMenu, sheet.RoleMenu)
	if err != nil {
		return nil, asDomain(err)
	}
	menuHeader := sheet.HeaderFor(grid[0], roles, sheet.RoleMenu)
	priceHeader := sheet.HeaderFor(grid[0], roles, sheet.RolePrice)

	items := []MenuItem{}
	for _, row := range sheet.Listing(grid, roles, true) {
		name := strings.TrimSpace(row.Get(menuHeader))
		if name == "" {
			continue
		}
		item := MenuItem{Index: row.Index, Name: name}
		if priceHeader != "" {
			item.Price = sheet.ParsePrice(row.Get(priceHeader))
		}
		items = append(items, item)
	}

	return &MenuListResult{Items: items}, nil
}

// PlaceAvailability pivots the place tab into a per-place-per-date matrix.
// No column is mandatory here: when no date column resolves the first column
// is used.
func (s *Service) PlaceAvailability(ctx context.Context, businessID uuid.UUID) (*sheet.PlaceMatrix, error) {
	_, grid, err := s.grid(ctx, businessID, sheet.KindPlace)
	if err != nil {
		return nil, err
	}

	var roles sheet.HeaderIndex
	if len(grid) > 0 {
		roles = sheet.ResolveHeaders(grid[0], sheet.KindPlace)
	} else {
		roles = sheet.HeaderIndex{}
	}

	matrix := sheet.BuildPlaceMatrix(grid, roles)
	return &matrix, nil
}

// faqColumns resolves the question and answer columns of the FAQ tab
func faqColumns(grid [][]string) (sheet.HeaderIndex, error) {
	if len(grid) == 0 {
		return nil, (&sheet.MissingColumnError{Role: sheet.RoleQuestion}).Domain()
	}
	roles, err := sheet.ResolveRequired(grid[0], sheet.KindFAQ, sheet.RoleQuestion, sheet.RoleAnswer)
	if err != nil {
		return nil, asDomain(err)
	}
	return roles, nil
}

// ListFAQ returns the question/answer pairs of the FAQ tab
func (s *Service) ListFAQ(ctx context.Context, businessID uuid.UUID) (*FAQListResult, error) {
	_, grid, err := s.grid(ctx, businessID, sheet.KindFAQ)
	if err != nil {
		return nil, err
	}

	roles, err := faqColumns(grid)
	if err != nil {
		return nil, err
	}
	questionHeader := sheet.HeaderFor(grid[0], roles, sheet.RoleQuestion)
	answerHeader := sheet.HeaderFor(grid[0], roles, sheet.RoleAnswer)

	entries := []FAQEntry{}
	for _, row := range sheet.Listing(grid, roles, false) {
		entries = append(entries, FAQEntry{
			Index:    row.Index,
			Question: row.Get(questionHeader),
			Answer:   row.Get(answerHeader),
		})
	}

	return &FAQListResult{Entries: entries}, nil
}

// faqValues lays out a write row with the question and answer placed in their
// resolved columns, so writes survive extra columns around them.
func faqValues(roles sheet.HeaderIndex, question, answer string) []string {
	qCol := roles.Column(sheet.RoleQuestion)
	aCol := roles.Column(sheet.RoleAnswer)
	width := qCol + 1
	if aCol+1 > width {
		width = aCol + 1
	}
	values := make([]string, width)
	values[qCol] = question
	values[aCol] = answer
	return values
}

// AddFAQ appends a question/answer pair to the FAQ tab. Requires write
// credentials; read-only deployments get ErrWriteNotConfigured.
func (s *Service) AddFAQ(ctx context.Context, businessID uuid.UUID, input AddFAQInput) (*FAQEntry, error) {
	if !s.writer.Capable() {
		return nil, sheet.ErrWriteNotConfigured
	}

	question := strings.TrimSpace(input.Question)
	answer := strings.TrimSpace(input.Answer)
	if question == "" {
		return nil, shared.NewDomainError("INVALID_FAQ", "Question cannot be empty")
	}
	if answer == "" {
		return nil, shared.NewDomainError("INVALID_FAQ", "Answer cannot be empty")
	}

	biz, grid, err := s.grid(ctx, businessID, sheet.KindFAQ)
	if err != nil {
		return nil, err
	}
	roles, err := faqColumns(grid)
	if err != nil {
		return nil, err
	}

	ref, err := biz.SheetReference(sheet.KindFAQ)
	if err != nil {
		return nil, err
	}
	if err := s.writer.AppendRow(ctx, ref, faqValues(roles, question, answer)); err != nil {
		s.logger.Error("faq append failed",
			zap.String("business_id", businessID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("faq entry added",
		zap.String("business_id", businessID.String()))

	return &FAQEntry{Index: len(grid) - 1, Question: question, Answer: answer}, nil
}

// UpdateFAQ overwrites an existing FAQ row in place
func (s *Service) UpdateFAQ(ctx context.Context, businessID uuid.UUID, input UpdateFAQInput) (*FAQEntry, error) {
	if !s.writer.Capable() {
		return nil, sheet.ErrWriteNotConfigured
	}

	question := strings.TrimSpace(input.Question)
	answer := strings.TrimSpace(input.Answer)
	if question == "" {
		return nil, shared.NewDomainError("INVALID_FAQ", "Question cannot be empty")
	}
	if answer == "" {
		return nil, shared.NewDomainError("INVALID_FAQ", "Answer cannot be empty")
	}

	biz, grid, err := s.grid(ctx, businessID, sheet.KindFAQ)
	if err != nil {
		return nil, err
	}
	roles, err := faqColumns(grid)
	if err != nil {
		return nil, err
	}
	if input.RowIndex < 0 || input.RowIndex >= len(grid)-1 {
		return nil, shared.NewDomainError("FAQ_ROW_NOT_FOUND", "No FAQ entry at that position")
	}

	ref, err := biz.SheetReference(sheet.KindFAQ)
	if err != nil {
		return nil, err
	}
	if err := s.writer.UpdateRow(ctx, ref, input.RowIndex, faqValues(roles, question, answer)); err != nil {
		s.logger.Error("faq update failed",
			zap.String("business_id", businessID.String()),
			zap.Int("row_index", input.RowIndex),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("faq entry updated",
		zap.String("business_id", businessID.String()),
		zap.Int("row_index", input.RowIndex))

	return &FAQEntry{Index: input.RowIndex, Question: question, Answer: answer}, nil
}

// WriteCapability reports whether FAQ mutations are available on this
// deployment
func (s *Service) WriteCapability() *WriteCapabilityResult {
	return &WriteCapabilityResult{Writable: s.writer.Capable()}
}

// Recipients builds the broadcast audience for a business. With an empty
// reservationDate every customer-tab row with a phone number is included;
// with a date set the reservation tab is filtered to rows whose derived date
// matches. Duplicate phone numbers are collapsed, first occurrence wins.
func (s *Service) Recipients(ctx context.Context, businessID uuid.UUID, reservationDate string) ([]broadcast.Recipient, error) {
	kind := sheet.KindMenu
	if reservationDate != "" {
		kind = sheet.KindReservation
	}

	_, grid, err := s.grid(ctx, businessID, kind)
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return []broadcast.Recipient{}, nil
	}

	roles, err := sheet.ResolveRequired(grid[0], kind, sheet.RolePhone)
	if err != nil {
		return nil, asDomain(err)
	}
	nameHeader := sheet.HeaderFor(grid[0], roles, sheet.RoleName)
	phoneHeader := sheet.HeaderFor(grid[0], roles, sheet.RolePhone)

	seen := make(map[string]bool)
	recipients := []broadcast.Recipient{}
	for _, row := range sheet.Listing(grid, roles, true) {
		if reservationDate != "" {
			if row.DerivedDate == nil || *row.DerivedDate != reservationDate {
				continue
			}
		}
		phone := strings.TrimSpace(row.Get(phoneHeader))
		if phone == "" || seen[phone] {
			continue
		}
		seen[phone] = true
		recipients = append(recipients, broadcast.Recipient{
			Name:  strings.TrimSpace(row.Get(nameHeader)),
			Phone: phone,
		})
	}

	return recipients, nil
}

// asDomain converts a MissingColumnError into its client-facing shape,
// passing every other error through unchanged.
func asDomain(err error) error {
	var missing *sheet.MissingColumnError
	if errors.As(err, &missing) {
		return missing.Domain()
	}
	return err
}
