package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/keepon-app/keepon-ledger/internal/apperrors"
	"github.com/keepon-app/keepon-ledger/internal/core/domain"
	portssvc "github.com/keepon-app/keepon-ledger/internal/core/ports/services"
	"github.com/keepon-app/keepon-ledger/internal/dto"
	"github.com/keepon-app/keepon-ledger/internal/handlers"
	"github.com/keepon-app/keepon-ledger/internal/platform/config"
	"github.com/keepon-app/keepon-ledger/internal/utils"
)

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

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) TrialBalance(ctx context.Context, businessID string, asOf time.Time, userID string) ([]domain.TrialBalanceRow, error) {
	args := m.Called(ctx, businessID, asOf, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Error(1)
}

func (m *MockReportingService) ProfitAndLoss(ctx context.Context, businessID string, from, to time.Time, userID string) (*domain.PAndLReport, error) {
	args := m.Called(ctx, businessID, from, to, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PAndLReport), args.Error(1)
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)

// --- Test Suite ---
type AccountHandlerTestSuite struct {
	suite.Suite
	router         *gin.Engine
	mockAccountSvc *MockAccountService
	businessID     string
	userID         string
	token          string
}

func (s *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.mockAccountSvc = new(MockAccountService)
	s.businessID = "biz-123"
	s.userID = "user-456"

	cfg := &config.Config{JWTSecret: testJWTSecret, RateLimit: "1000-M", IsProduction: true}
	container := &portssvc.ServiceContainer{
		Account:   s.mockAccountSvc,
		Ledger:    new(MockLedgerService),
		Business:  new(MockBusinessService),
		Reporting: new(MockReportingService),
		APIKey:    new(MockAPIKeyService),
	}

	s.router = gin.New()
	handlers.RegisterRoutes(s.router, cfg, container, &utils.PosthogClientWrapper{})

	s.token = signTestToken(s.userID)
}

func (s *AccountHandlerTestSuite) doRequest(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *AccountHandlerTestSuite) TestCreateAccount_Success() {
	req := dto.CreateAccountRequest{Code: "1000", Name: "Cash", AccountType: domain.Asset}
	created := &domain.Account{Code: "1000", Name: "Cash", AccountType: domain.Asset, Postable: true, IsActive: true, Balance: decimal.Zero}

	s.mockAccountSvc.On("CreateAccount", mock.Anything, s.businessID, req, s.userID).Return(created, nil).Once()

	w := s.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/businesses/%s/accounts", s.businessID), req)

	s.Equal(http.StatusCreated, w.Code)
	var envelope dto.Envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &envelope))
	s.Equal("success", envelope.Status)
	s.mockAccountSvc.AssertExpectations(s.T())
}

func (s *AccountHandlerTestSuite) TestCreateAccount_MissingCodeIs400() {
	w := s.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/businesses/%s/accounts", s.businessID),
		dto.CreateAccountRequest{Name: "Cash", AccountType: domain.Asset})

	s.Equal(http.StatusBadRequest, w.Code)
	s.mockAccountSvc.AssertNotCalled(s.T(), "CreateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *AccountHandlerTestSuite) TestCreateAccount_DuplicateIs409() {
	req := dto.CreateAccountRequest{Code: "1000", Name: "Cash", AccountType: domain.Asset}
	s.mockAccountSvc.On("CreateAccount", mock.Anything, s.businessID, req, s.userID).
		Return(nil, fmt.Errorf("%w: account code 1000 already exists", apperrors.ErrConflict)).Once()

	w := s.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/businesses/%s/accounts", s.businessID), req)

	s.Equal(http.StatusConflict, w.Code)
}

func (s *AccountHandlerTestSuite) TestGetAccount_NotFoundIs404() {
	s.mockAccountSvc.On("GetAccountByCode", mock.Anything, s.businessID, "9999", s.userID).
		Return(nil, apperrors.ErrNotFound).Once()

	w := s.doRequest(http.MethodGet, fmt.Sprintf("/api/v1/businesses/%s/accounts/9999", s.businessID), nil)

	s.Equal(http.StatusNotFound, w.Code)
	var envelope dto.Envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &envelope))
	s.Equal("error", envelope.Status)
}

func (s *AccountHandlerTestSuite) TestListAccounts_PassesPostableOnly() {
	s.mockAccountSvc.On("ListAccounts", mock.Anything, s.businessID, s.userID, mock.MatchedBy(func(p dto.ListAccountsParams) bool {
		return p.PostableOnly && p.Limit == 100
	})).Return([]domain.Account{{Code: "1000", Postable: true, IsActive: true}}, nil).Once()

	w := s.doRequest(http.MethodGet, fmt.Sprintf("/api/v1/businesses/%s/accounts?postableOnly=true", s.businessID), nil)

	s.Equal(http.StatusOK, w.Code)
	s.mockAccountSvc.AssertExpectations(s.T())
}

func (s *AccountHandlerTestSuite) TestDeactivateAccount_NonZeroBalanceIs409() {
	s.mockAccountSvc.On("DeactivateAccount", mock.Anything, s.businessID, "1000", s.userID).
		Return(fmt.Errorf("%w: account 1000 has a non-zero balance", apperrors.ErrConflict)).Once()

	w := s.doRequest(http.MethodDelete, fmt.Sprintf("/api/v1/businesses/%s/accounts/1000", s.businessID), nil)

	s.Equal(http.StatusConflict, w.Code)
	var envelope dto.Envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &envelope))
	s.Contains(envelope.Message, "non-zero balance")
}

func TestAccountHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
