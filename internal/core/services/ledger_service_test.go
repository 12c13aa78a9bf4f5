package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/keepon-app/keepon-ledger/internal/apperrors"
	"github.com/keepon-app/keepon-ledger/internal/core/domain"
	portsrepo "github.com/keepon-app/keepon-ledger/internal/core/ports/repositories"
	portssvc "github.com/keepon-app/keepon-ledger/internal/core/ports/services"
	"github.com/keepon-app/keepon-ledger/internal/core/services"
	"github.com/keepon-app/keepon-ledger/internal/dto"
	"github.com/keepon-app/keepon-ledger/internal/utils/accounting"
)

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) FindTransactionByID(ctx context.Context, businessID string, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, businessID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) FindTransactionByIdempotencyKey(ctx context.Context, businessID string, key string) (*domain.Transaction, error) {
	args := m.Called(ctx, businessID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) FindLinesByTransactionID(ctx context.Context, businessID string, transactionID string) ([]domain.EntryLine, error) {
	args := m.Called(ctx, businessID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EntryLine), args.Error(1)
}

func (m *MockLedgerRepository) ListTransactions(ctx context.Context, businessID string, filter portsrepo.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, businessID, filter, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return args.Get(0).([]domain.Transaction), token, args.Error(2)
}

func (m *MockLedgerRepository) CreateTransaction(ctx context.Context, txn domain.Transaction, balanceChanges map[string]decimal.Decimal) (*domain.Transaction, error) {
	args := m.Called(ctx, txn, balanceChanges)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) CreateReversal(ctx context.Context, reversing domain.Transaction, balanceChanges map[string]decimal.Decimal, originalID string) (*domain.Transaction, error) {
	args := m.Called(ctx, reversing, balanceChanges, originalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) ListPostingsByAccount(ctx context.Context, businessID string, accountCode string, limit int, nextToken *string) ([]domain.Posting, *string, error) {
	args := m.Called(ctx, businessID, accountCode, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return args.Get(0).([]domain.Posting), token, args.Error(2)
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByCode(ctx context.Context, businessID string, code string, userID string) (*domain.Account, error) {
	args := m.Called(ctx, businessID, code, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountsByCodes(ctx context.Context, businessID string, codes []string, userID string) (map[string]domain.Account, error) {
	args := m.Called(ctx, businessID, codes, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, businessID string, userID string, params dto.ListAccountsParams) ([]domain.Account, error) {
	args := m.Called(ctx, businessID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) CreateAccount(ctx context.Context, businessID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, businessID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, businessID string, code string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, businessID, code, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeactivateAccount(ctx context.Context, businessID string, code string, userID string) error {
	args := m.Called(ctx, businessID, code, userID)
	return args.Error(0)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock BusinessService ---
type MockBusinessService struct {
	mock.Mock
}

func (m *MockBusinessService) FindBusinessByID(ctx context.Context, businessID string) (*domain.Business, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Business), args.Error(1)
}

func (m *MockBusinessService) ListUserBusinesses(ctx context.Context, userID string) ([]domain.Business, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Business), args.Error(1)
}

func (m *MockBusinessService) CreateBusiness(ctx context.Context, name, description, creatorUserID string) (*domain.Business, error) {
	args := m.Called(ctx, name, description, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Business), args.Error(1)
}

func (m *MockBusinessService) UpdateBusiness(ctx context.Context, businessID, name, description, requestingUserID string) (*domain.Business, error) {
	args := m.Called(ctx, businessID, name, description, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Business), args.Error(1)
}

func (m *MockBusinessService) AddUserToBusiness(ctx context.Context, addingUserID, targetUserID, businessID string, role domain.BusinessRole) error {
	args := m.Called(ctx, addingUserID, targetUserID, businessID, role)
	return args.Error(0)
}

func (m *MockBusinessService) UpdateUserBusinessRole(ctx context.Context, requestingUserID, targetUserID, businessID string, newRole domain.BusinessRole) error {
	args := m.Called(ctx, requestingUserID, targetUserID, businessID, newRole)
	return args.Error(0)
}

func (m *MockBusinessService) AuthorizeUserAction(ctx context.Context, userID, businessID string, requiredRole domain.BusinessRole) error {
	args := m.Called(ctx, userID, businessID, requiredRole)
	return args.Error(0)
}

var _ portssvc.BusinessSvcFacade = (*MockBusinessService)(nil)

// --- Test Suite ---
type LedgerServiceTestSuite struct {
	suite.Suite
	mockLedgerRepo  *MockLedgerRepository
	mockAccountSvc  *MockAccountService
	mockBusinessSvc *MockBusinessService
	service         portssvc.LedgerSvcFacade
	ctx             context.Context

	businessID string
	userID     string
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.mockLedgerRepo = new(MockLedgerRepository)
	s.mockAccountSvc = new(MockAccountService)
	s.mockBusinessSvc = new(MockBusinessService)
	s.service = services.NewLedgerService(s.mockLedgerRepo, s.mockAccountSvc, s.mockBusinessSvc)
	s.ctx = context.Background()
	s.businessID = "biz-123"
	s.userID = "user-456"
}

func (s *LedgerServiceTestSuite) accounts() map[string]domain.Account {
	return map[string]domain.Account{
		"1000": {Code: "1000", AccountType: domain.Asset, Postable: true, IsActive: true},
		"4000": {Code: "4000", AccountType: domain.Revenue, Postable: true, IsActive: true},
	}
}

func (s *LedgerServiceTestSuite) postRequest(amount float64) dto.PostTransactionRequest {
	return dto.PostTransactionRequest{
		EntryType:   domain.EntryManual,
		Description: "Consulting income",
		Lines: []dto.EntryLineRequest{
			{
				Date:          time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
				DebitAccount:  "1000",
				CreditAccount: "4000",
				Amount:        decimal.NewFromFloat(amount),
			},
		},
	}
}

func (s *LedgerServiceTestSuite) TestPostTransaction_Success() {
	req := s.postRequest(150)

	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleMember).Return(nil).Once()
	s.mockAccountSvc.On("GetAccountsByCodes", s.ctx, s.businessID, []string{"1000", "4000"}, s.userID).
		Return(s.accounts(), nil).Once()

	posted := &domain.Transaction{TransactionID: "JNL-0001", BusinessID: s.businessID, EntryType: domain.EntryManual, Status: domain.Posted}
	s.mockLedgerRepo.On("CreateTransaction", s.ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.EntryType == domain.EntryManual &&
			txn.TransactionID == "" && // assigned by the repository
			txn.Status == domain.Posted &&
			len(txn.Lines) == 1 &&
			txn.TotalAmount.Equal(decimal.NewFromInt(150))
	}), mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
		// Debit on an asset raises it, credit on revenue raises it too.
		return changes["1000"].Equal(decimal.NewFromInt(150)) && changes["4000"].Equal(decimal.NewFromInt(150))
	})).Return(posted, nil).Once()

	result, err := s.service.PostTransaction(s.ctx, s.businessID, req, s.userID)

	s.Require().NoError(err)
	s.Equal("JNL-0001", result.TransactionID)
	s.mockLedgerRepo.AssertExpectations(s.T())
	s.mockAccountSvc.AssertExpectations(s.T())
	s.mockBusinessSvc.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestPostTransaction_AuthorizationFails() {
	req := s.postRequest(100)
	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleMember).
		Return(apperrors.ErrForbidden).Once()

	result, err := s.service.PostTransaction(s.ctx, s.businessID, req, s.userID)

	s.Require().Error(err)
	s.Nil(result)
	s.ErrorIs(err, apperrors.ErrForbidden)
	s.mockLedgerRepo.AssertNotCalled(s.T(), "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestPostTransaction_UnknownEntryType() {
	req := s.postRequest(100)
	req.EntryType = domain.EntryType("BOGUS")
	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleMember).Return(nil).Once()

	_, err := s.service.PostTransaction(s.ctx, s.businessID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestPostTransaction_EmptyLines() {
	req := s.postRequest(100)
	req.Lines = nil
	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleMember).Return(nil).Once()

	_, err := s.service.PostTransaction(s.ctx, s.businessID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockAccountSvc.AssertNotCalled(s.T(), "GetAccountsByCodes", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestPostTransaction_SameAccountLine() {
	req := s.postRequest(100)
	req.Lines[0].CreditAccount = "1000"
	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleMember).Return(nil).Once()

	_, err := s.service.PostTransaction(s.ctx, s.businessID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestPostTransaction_NonPositiveAmount() {
	req := s.postRequest(0)
	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleMember).Return(nil).Once()

	_, err := s.service.PostTransaction(s.ctx, s.businessID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestPostTransaction_UnknownAccount() {
	req := s.postRequest(100)
	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleMember).Return(nil).Once()

	accounts := s.accounts()
	delete(accounts, "4000")
	s.mockAccountSvc.On("GetAccountsByCodes", s.ctx, s.businessID, []string{"1000", "4000"}, s.userID).
		Return(accounts, nil).Once()

	_, err := s.service.PostTransaction(s.ctx, s.businessID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.ErrorContains(err, "4000")
}

func (s *LedgerServiceTestSuite) TestPostTransaction_NotPostableAccountOnManualEntry() {
	req := s.postRequest(100)
	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleMember).Return(nil).Once()

	accounts := s.accounts()
	control := accounts["1000"]
	control.Postable = false
	accounts["1000"] = control
	s.mockAccountSvc.On("GetAccountsByCodes", s.ctx, s.businessID, []string{"1000", "4000"}, s.userID).
		Return(accounts, nil).Once()

	_, err := s.service.PostTransaction(s.ctx, s.businessID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestPostTransaction_NonPostableAccountAllowedOnSystemEntry() {
	req := s.postRequest(100)
	req.EntryType = domain.EntrySale

	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleMember).Return(nil).Once()

	accounts := s.accounts()
	control := accounts["1000"]
	control.Postable = false
	accounts["1000"] = control
	s.mockAccountSvc.On("GetAccountsByCodes", s.ctx, s.businessID, []string{"1000", "4000"}, s.userID).
		Return(accounts, nil).Once()

	posted := &domain.Transaction{TransactionID: "SAL-0001", Status: domain.Posted}
	s.mockLedgerRepo.On("CreateTransaction", s.ctx, mock.Anything, mock.Anything).Return(posted, nil).Once()

	result, err := s.service.PostTransaction(s.ctx, s.businessID, req, s.userID)

	s.Require().NoError(err)
	s.Equal("SAL-0001", result.TransactionID)
}

func (s *LedgerServiceTestSuite) TestPostTransaction_InactiveAccount() {
	req := s.postRequest(100)
	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleMember).Return(nil).Once()

	accounts := s.accounts()
	closed := accounts["4000"]
	closed.IsActive = false
	accounts["4000"] = closed
	s.mockAccountSvc.On("GetAccountsByCodes", s.ctx, s.businessID, []string{"1000", "4000"}, s.userID).
		Return(accounts, nil).Once()

	_, err := s.service.PostTransaction(s.ctx, s.businessID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestPostTransaction_IdempotencyKeyConflict() {
	req := s.postRequest(100)
	key := "idem-abc"
	req.IdempotencyKey = &key

	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleMember).Return(nil).Once()
	existing := &domain.Transaction{TransactionID: "JNL-0042"}
	s.mockLedgerRepo.On("FindTransactionByIdempotencyKey", s.ctx, s.businessID, key).Return(existing, nil).Once()

	_, err := s.service.PostTransaction(s.ctx, s.businessID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConflict)
	s.ErrorContains(err, "JNL-0042")
	s.mockLedgerRepo.AssertNotCalled(s.T(), "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestPostTransaction_IdempotencyRaceMapsToConflict() {
	req := s.postRequest(100)
	key := "idem-race"
	req.IdempotencyKey = &key

	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleMember).Return(nil).Once()
	s.mockLedgerRepo.On("FindTransactionByIdempotencyKey", s.ctx, s.businessID, key).Return(nil, apperrors.ErrNotFound).Once()
	s.mockAccountSvc.On("GetAccountsByCodes", s.ctx, s.businessID, []string{"1000", "4000"}, s.userID).
		Return(s.accounts(), nil).Once()
	s.mockLedgerRepo.On("CreateTransaction", s.ctx, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrDuplicate).Once()

	_, err := s.service.PostTransaction(s.ctx, s.businessID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *LedgerServiceTestSuite) TestReverseTransaction_Success() {
	originalID := "JNL-0007"
	original := &domain.Transaction{
		TransactionID: originalID,
		BusinessID:    s.businessID,
		EntryType:     domain.EntryManual,
		Description:   "Office rent",
		TotalAmount:   decimal.NewFromInt(200),
		Status:        domain.Posted,
	}
	originalLines := []domain.EntryLine{
		{LineID: "line-1", TransactionID: originalID, LineDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), DebitAccountCode: "1000", CreditAccountCode: "4000", Amount: decimal.NewFromInt(200)},
	}

	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleMember).Return(nil).Once()
	s.mockLedgerRepo.On("FindTransactionByID", s.ctx, s.businessID, originalID).Return(original, nil).Once()
	s.mockLedgerRepo.On("FindLinesByTransactionID", s.ctx, s.businessID, originalID).Return(originalLines, nil).Once()
	s.mockAccountSvc.On("GetAccountsByCodes", s.ctx, s.businessID, []string{"4000", "1000"}, s.userID).
		Return(s.accounts(), nil).Once()

	reversal := &domain.Transaction{TransactionID: "JNL-0008", ReversalOf: &originalID, Status: domain.Posted}
	s.mockLedgerRepo.On("CreateReversal", s.ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		if len(txn.Lines) != 1 || txn.ReversalOf == nil || *txn.ReversalOf != originalID {
			return false
		}
		// The mirror line swaps the debit and credit accounts.
		line := txn.Lines[0]
		return line.DebitAccountCode == "4000" && line.CreditAccountCode == "1000" && line.Amount.Equal(decimal.NewFromInt(200))
	}), mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
		// The reversal undoes the original deltas.
		return changes["1000"].Equal(decimal.NewFromInt(-200)) && changes["4000"].Equal(decimal.NewFromInt(-200))
	}), originalID).Return(reversal, nil).Once()

	result, err := s.service.ReverseTransaction(s.ctx, s.businessID, originalID, s.userID)

	s.Require().NoError(err)
	s.Equal("JNL-0008", result.TransactionID)
	s.mockLedgerRepo.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestReverseTransaction_NotFound() {
	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleMember).Return(nil).Once()
	s.mockLedgerRepo.On("FindTransactionByID", s.ctx, s.businessID, "JNL-9999").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.ReverseTransaction(s.ctx, s.businessID, "JNL-9999", s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerServiceTestSuite) TestReverseTransaction_NonReversibleEntryType() {
	original := &domain.Transaction{TransactionID: "SAL-0001", EntryType: domain.EntrySale, Status: domain.Posted}
	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleMember).Return(nil).Once()
	s.mockLedgerRepo.On("FindTransactionByID", s.ctx, s.businessID, "SAL-0001").Return(original, nil).Once()

	_, err := s.service.ReverseTransaction(s.ctx, s.businessID, "SAL-0001", s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrForbidden)
	s.ErrorContains(err, "cannot be reversed")
}

func (s *LedgerServiceTestSuite) TestReverseTransaction_AlreadyReversed() {
	original := &domain.Transaction{TransactionID: "JNL-0001", EntryType: domain.EntryManual, Status: domain.Reversed}
	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleMember).Return(nil).Once()
	s.mockLedgerRepo.On("FindTransactionByID", s.ctx, s.businessID, "JNL-0001").Return(original, nil).Once()

	_, err := s.service.ReverseTransaction(s.ctx, s.businessID, "JNL-0001", s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *LedgerServiceTestSuite) TestReverseTransaction_CannotReverseAReversal() {
	other := "JNL-0001"
	original := &domain.Transaction{TransactionID: "JNL-0002", EntryType: domain.EntryManual, Status: domain.Posted, ReversalOf: &other}
	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleMember).Return(nil).Once()
	s.mockLedgerRepo.On("FindTransactionByID", s.ctx, s.businessID, "JNL-0002").Return(original, nil).Once()

	_, err := s.service.ReverseTransaction(s.ctx, s.businessID, "JNL-0002", s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *LedgerServiceTestSuite) TestReverseTransaction_ConcurrentReversalConflict() {
	originalID := "PAY-0003"
	original := &domain.Transaction{
		TransactionID: originalID,
		EntryType:     domain.EntryPayment,
		TotalAmount:   decimal.NewFromInt(50),
		Status:        domain.Posted,
	}
	originalLines := []domain.EntryLine{
		{LineID: "line-1", DebitAccountCode: "1000", CreditAccountCode: "4000", Amount: decimal.NewFromInt(50)},
	}

	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleMember).Return(nil).Once()
	s.mockLedgerRepo.On("FindTransactionByID", s.ctx, s.businessID, originalID).Return(original, nil).Once()
	s.mockLedgerRepo.On("FindLinesByTransactionID", s.ctx, s.businessID, originalID).Return(originalLines, nil).Once()
	s.mockAccountSvc.On("GetAccountsByCodes", s.ctx, s.businessID, mock.Anything, s.userID).Return(s.accounts(), nil).Once()
	s.mockLedgerRepo.On("CreateReversal", s.ctx, mock.Anything, mock.Anything, originalID).
		Return(nil, apperrors.ErrConflict).Once()

	_, err := s.service.ReverseTransaction(s.ctx, s.businessID, originalID, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *LedgerServiceTestSuite) TestGetTransactionByID_Success() {
	txn := &domain.Transaction{TransactionID: "JNL-0001", Status: domain.Posted}
	lines := []domain.EntryLine{{LineID: "line-1", TransactionID: "JNL-0001"}}

	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleReadOnly).Return(nil).Once()
	s.mockLedgerRepo.On("FindTransactionByID", s.ctx, s.businessID, "JNL-0001").Return(txn, nil).Once()
	s.mockLedgerRepo.On("FindLinesByTransactionID", s.ctx, s.businessID, "JNL-0001").Return(lines, nil).Once()

	result, err := s.service.GetTransactionByID(s.ctx, s.businessID, "JNL-0001", s.userID)

	s.Require().NoError(err)
	s.Len(result.Lines, 1)
}

func (s *LedgerServiceTestSuite) TestGetTransactionByID_NotFound() {
	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleReadOnly).Return(nil).Once()
	s.mockLedgerRepo.On("FindTransactionByID", s.ctx, s.businessID, "JNL-0404").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.GetTransactionByID(s.ctx, s.businessID, "JNL-0404", s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerServiceTestSuite) TestListTransactions_PaginatesWithHasMore() {
	token := "next-page-token"
	txns := []domain.Transaction{
		{TransactionID: "JNL-0002"},
		{TransactionID: "JNL-0001"},
	}

	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleReadOnly).Return(nil).Once()
	s.mockLedgerRepo.On("ListTransactions", s.ctx, s.businessID, mock.Anything, 2, (*string)(nil)).
		Return(txns, &token, nil).Once()

	resp, err := s.service.ListTransactions(s.ctx, s.businessID, s.userID, dto.ListTransactionsParams{Limit: 2})

	s.Require().NoError(err)
	s.Len(resp.Transactions, 2)
	s.True(resp.HasMore)
	s.Equal(&token, resp.NextToken)
}

func (s *LedgerServiceTestSuite) TestListTransactions_LastPage() {
	txns := []domain.Transaction{{TransactionID: "JNL-0001"}}

	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleReadOnly).Return(nil).Once()
	s.mockLedgerRepo.On("ListTransactions", s.ctx, s.businessID, mock.Anything, 20, (*string)(nil)).
		Return(txns, nil, nil).Once()

	resp, err := s.service.ListTransactions(s.ctx, s.businessID, s.userID, dto.ListTransactionsParams{})

	s.Require().NoError(err)
	s.False(resp.HasMore)
	s.Nil(resp.NextToken)
}

func (s *LedgerServiceTestSuite) TestListTransactions_InvalidEntryTypeFilter() {
	bogus := "BOGUS"
	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleReadOnly).Return(nil).Once()

	_, err := s.service.ListTransactions(s.ctx, s.businessID, s.userID, dto.ListTransactionsParams{EntryType: &bogus})

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestListTransactions_InvalidDateFilter() {
	badDate := "June 1st"
	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleReadOnly).Return(nil).Once()

	_, err := s.service.ListTransactions(s.ctx, s.businessID, s.userID, dto.ListTransactionsParams{FromDate: &badDate})

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestListAccountPostings_Success() {
	account := &domain.Account{Code: "1000", AccountType: domain.Asset, IsActive: true}
	postings := []domain.Posting{
		{PostingID: "p-2", AccountCode: "1000", RunningBalance: decimal.NewFromInt(300)},
		{PostingID: "p-1", AccountCode: "1000", RunningBalance: decimal.NewFromInt(100)},
	}

	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleReadOnly).Return(nil).Once()
	s.mockAccountSvc.On("GetAccountByCode", s.ctx, s.businessID, "1000", s.userID).Return(account, nil).Once()
	s.mockLedgerRepo.On("ListPostingsByAccount", s.ctx, s.businessID, "1000", 20, (*string)(nil)).
		Return(postings, nil, nil).Once()

	resp, err := s.service.ListAccountPostings(s.ctx, s.businessID, "1000", s.userID, dto.ListPostingsParams{})

	s.Require().NoError(err)
	s.Len(resp.Postings, 2)
	s.False(resp.HasMore)
	s.True(resp.Postings[0].RunningBalance.Equal(decimal.NewFromInt(300)))
}

func (s *LedgerServiceTestSuite) TestListAccountPostings_UnknownAccount() {
	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleReadOnly).Return(nil).Once()
	s.mockAccountSvc.On("GetAccountByCode", s.ctx, s.businessID, "9999", s.userID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.ListAccountPostings(s.ctx, s.businessID, "9999", s.userID, dto.ListPostingsParams{})

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrNotFound)
	s.mockLedgerRepo.AssertNotCalled(s.T(), "ListPostingsByAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// fakeLedgerRepository is an in-memory LedgerRepositoryFacade that maintains
// account balances the way the real repository does: by applying the balance
// deltas handed to it on every post and reversal. It keeps the full
// transaction log so tests can recompute balances from scratch.
type fakeLedgerRepository struct {
	seq      int
	txns     map[string]*domain.Transaction
	lines    map[string][]domain.EntryLine
	balances map[string]decimal.Decimal
}

func newFakeLedgerRepository() *fakeLedgerRepository {
	return &fakeLedgerRepository{
		txns:     make(map[string]*domain.Transaction),
		lines:    make(map[string][]domain.EntryLine),
		balances: make(map[string]decimal.Decimal),
	}
}

func (f *fakeLedgerRepository) apply(changes map[string]decimal.Decimal) {
	for code, delta := range changes {
		f.balances[code] = f.balances[code].Add(delta)
	}
}

func (f *fakeLedgerRepository) store(txn domain.Transaction, changes map[string]decimal.Decimal) *domain.Transaction {
	f.seq++
	txn.TransactionID = fmt.Sprintf("JNL-%04d", f.seq)
	for i := range txn.Lines {
		txn.Lines[i].TransactionID = txn.TransactionID
	}
	f.txns[txn.TransactionID] = &txn
	f.lines[txn.TransactionID] = txn.Lines
	f.apply(changes)
	return &txn
}

func (f *fakeLedgerRepository) FindTransactionByID(_ context.Context, _ string, transactionID string) (*domain.Transaction, error) {
	txn, ok := f.txns[transactionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return txn, nil
}

func (f *fakeLedgerRepository) FindTransactionByIdempotencyKey(_ context.Context, _ string, _ string) (*domain.Transaction, error) {
	return nil, apperrors.ErrNotFound
}

func (f *fakeLedgerRepository) FindLinesByTransactionID(_ context.Context, _ string, transactionID string) ([]domain.EntryLine, error) {
	return f.lines[transactionID], nil
}

func (f *fakeLedgerRepository) ListTransactions(_ context.Context, _ string, _ portsrepo.TransactionFilter, _ int, _ *string) ([]domain.Transaction, *string, error) {
	txns := make([]domain.Transaction, 0, len(f.txns))
	for _, txn := range f.txns {
		txns = append(txns, *txn)
	}
	return txns, nil, nil
}

func (f *fakeLedgerRepository) CreateTransaction(_ context.Context, txn domain.Transaction, balanceChanges map[string]decimal.Decimal) (*domain.Transaction, error) {
	return f.store(txn, balanceChanges), nil
}

func (f *fakeLedgerRepository) CreateReversal(_ context.Context, reversing domain.Transaction, balanceChanges map[string]decimal.Decimal, originalID string) (*domain.Transaction, error) {
	original, ok := f.txns[originalID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if original.Status != domain.Posted {
		return nil, apperrors.ErrConflict
	}
	posted := f.store(reversing, balanceChanges)
	original.Status = domain.Reversed
	original.ReversedBy = &posted.TransactionID
	return posted, nil
}

func (f *fakeLedgerRepository) ListPostingsByAccount(_ context.Context, _ string, _ string, _ int, _ *string) ([]domain.Posting, *string, error) {
	return nil, nil, nil
}

var _ portsrepo.LedgerRepositoryFacade = (*fakeLedgerRepository)(nil)

// Recomputing every account's signed deltas from the stored transaction log
// must land exactly on the balances maintained incrementally during a
// sequence of posts and a reversal.
func (s *LedgerServiceTestSuite) TestPostAndReverse_BalancesMatchRecomputedDeltas() {
	repo := newFakeLedgerRepository()
	service := services.NewLedgerService(repo, s.mockAccountSvc, s.mockBusinessSvc)

	s.mockBusinessSvc.On("AuthorizeUserAction", s.ctx, s.userID, s.businessID, domain.RoleMember).Return(nil)
	s.mockAccountSvc.On("GetAccountsByCodes", s.ctx, s.businessID, mock.Anything, s.userID).Return(s.accounts(), nil)

	amounts := []float64{100, 40.25, 59.75}
	references := make([]string, 0, len(amounts))
	for _, amount := range amounts {
		posted, err := service.PostTransaction(s.ctx, s.businessID, s.postRequest(amount), s.userID)
		s.Require().NoError(err)
		references = append(references, posted.TransactionID)
	}

	reversal, err := service.ReverseTransaction(s.ctx, s.businessID, references[1], s.userID)
	s.Require().NoError(err)
	s.Equal(domain.Reversed, repo.txns[references[1]].Status)
	s.Require().NotNil(repo.txns[references[1]].ReversedBy)
	s.Equal(reversal.TransactionID, *repo.txns[references[1]].ReversedBy)

	accountTypes := map[string]domain.AccountType{
		"1000": domain.Asset,
		"4000": domain.Revenue,
	}
	recomputed := make(map[string]decimal.Decimal)
	for id := range repo.txns {
		changes, err := accounting.BalanceChanges(repo.lines[id], accountTypes)
		s.Require().NoError(err)
		for code, delta := range changes {
			recomputed[code] = recomputed[code].Add(delta)
		}
	}

	s.Require().Len(repo.balances, 2)
	for code, maintained := range repo.balances {
		s.True(maintained.Equal(recomputed[code]),
			"account %s: maintained balance %s != recomputed %s", code, maintained, recomputed[code])
	}
	// The surviving net is the two unreversed posts.
	expected := decimal.NewFromFloat(100).Add(decimal.NewFromFloat(59.75))
	s.True(repo.balances["1000"].Equal(expected))
	s.True(repo.balances["4000"].Equal(expected))
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
