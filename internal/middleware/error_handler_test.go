package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"bankledger/internal/errors"
	"bankledger/internal/ledger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

// ErrorHandlerTestSuite defines the test suite for the custom HTTP error handler
type ErrorHandlerTestSuite struct {
	suite.Suite
	echo *echo.Echo
}

// SetupTest runs before each test
func (s *ErrorHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.echo.HTTPErrorHandler = CustomHTTPErrorHandler
}

// TestErrorHandlerTestSuite runs the test suite
func TestErrorHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorHandlerTestSuite))
}

func (s *ErrorHandlerTestSuite) handle(err error) (*httptest.ResponseRecorder, *errors.ErrorResponse) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.Set(TraceIDContextKey, "test-trace-id")

	CustomHTTPErrorHandler(err, c)

	var response errors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	return rec, &response
}

// TestEchoHTTPError tests that echo.HTTPError is mapped to the standard shape
func (s *ErrorHandlerTestSuite) TestEchoHTTPError() {
	rec, response := s.handle(echo.NewHTTPError(http.StatusNotFound, "route not found"))

	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(string(errors.AccountNotFound), response.Error.Code)
	s.Equal("route not found", response.Error.Message)
	s.Equal("test-trace-id", response.Error.TraceID)
}

// TestLedgerError_InsufficientFunds maps the failure kind to its code and status
func (s *ErrorHandlerTestSuite) TestLedgerError_InsufficientFunds() {
	err := ledger.NewError(ledger.KindInsufficientFunds, "balance too low")
	rec, response := s.handle(err)

	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Equal(string(errors.LedgerInsufficientFunds), response.Error.Code)
	s.Equal("balance too low", response.Error.Message)
}

// TestLedgerError_Busy maps lock contention to 503
func (s *ErrorHandlerTestSuite) TestLedgerError_Busy() {
	err := ledger.NewError(ledger.KindBusy, "account is locked")
	rec, response := s.handle(err)

	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Equal(string(errors.LedgerBusy), response.Error.Code)
}

// TestGenericError is wrapped as a system error without leaking details
func (s *ErrorHandlerTestSuite) TestGenericError() {
	rec, response := s.handle(fmt.Errorf("database connection reset"))

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal(string(errors.SystemInternalError), response.Error.Code)
}
